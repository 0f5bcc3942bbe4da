package db

import "gorm.io/gorm"

// ContactSubmission 定义了课程咨询/报名表单的存储模型
type ContactSubmission struct {
	gorm.Model
	Name           string `gorm:"not null"`
	Email          string `gorm:"not null;index"`
	Phone          string
	CourseInterest string
	Message        string
}
