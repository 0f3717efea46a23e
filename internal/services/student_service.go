package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/pkg/dbmanager"
)

type StudentService interface {
	List(ctx context.Context, req *dtos.StudentListRequest) (*dtos.StudentListResponse, uint32, error)
	GetByName(ctx context.Context, name string) (*dtos.StudentDetailResponse, uint32, error)
}

type studentService struct {
	students dbmanager.StudentRepository
}

func NewStudentService(students dbmanager.StudentRepository) StudentService {
	return &studentService{students: students}
}

func (s *studentService) List(ctx context.Context, req *dtos.StudentListRequest) (*dtos.StudentListResponse, uint32, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	students, total, err := s.students.Query(ctx, dbmanager.StudentFilter{
		College:   strings.TrimSpace(req.College),
		Major:     strings.TrimSpace(req.Major),
		ClassName: strings.TrimSpace(req.ClassName),
		Grade:     req.Grade,
		Gender:    strings.TrimSpace(req.Gender),
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	})
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to fetch students: %v", err)
	}
	if students == nil {
		students = []dbmanager.Student{}
	}
	return &dtos.StudentListResponse{Students: students, Total: total}, http.StatusOK, nil
}

func (s *studentService) GetByName(ctx context.Context, name string) (*dtos.StudentDetailResponse, uint32, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("name is required")
	}

	records, err := s.students.GetByKey(ctx, name)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to fetch student: %v", err)
	}
	if len(records) == 0 {
		return nil, http.StatusNotFound, fmt.Errorf("student not found")
	}
	return &dtos.StudentDetailResponse{Name: name, Records: records}, http.StatusOK, nil
}
