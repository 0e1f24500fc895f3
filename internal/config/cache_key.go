package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamContentKey returns the cache key for an exam's questions and answer key.
func (r *CacheKeyStruct) ExamContentKey(examID int) string {
	return fmt.Sprintf("exam:%d:content", examID)
}

// ExamContentGenKey returns the key holding the exam's content generation.
// It is bumped whenever the question set changes.
func (r *CacheKeyStruct) ExamContentGenKey(examID int) string {
	return fmt.Sprintf("exam:%d:content:gen", examID)
}

var CacheKey = NewCacheKeyStruct()
