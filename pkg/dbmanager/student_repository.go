package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

const tracerName = "github.com/hq040506/DL-student-assistant/pkg/dbmanager"

const defaultPageSize = 50

// Student is a row of the students table.
type Student struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	StudentID string `gorm:"column:student_id;size:20;uniqueIndex;not null" json:"student_id"`
	Name      string `gorm:"size:64;index;not null" json:"name"`
	ClassName string `gorm:"column:class_name;size:64" json:"class_name"`
	College   string `gorm:"size:64" json:"college"`
	Major     string `gorm:"size:64" json:"major"`
	Grade     int    `json:"grade"`
	Gender    string `gorm:"size:8" json:"gender"`
	Phone     string `gorm:"size:20" json:"phone"`
}

func (Student) TableName() string {
	return schema.TableName
}

// StudentFilter narrows a listing. Zero fields do not filter.
type StudentFilter struct {
	College   string
	Major     string
	ClassName string
	Grade     int
	Gender    string
	Limit     int
	Offset    int
}

// GroupCount is one bucket of a per-column distribution.
type GroupCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// StudentRepository is the entity store behind the assistant.
type StudentRepository interface {
	Query(ctx context.Context, filter StudentFilter) ([]Student, int64, error)
	GetByKey(ctx context.Context, name string) ([]map[string]interface{}, error)
	DistinctValues(ctx context.Context, column string) ([]string, error)
	CountBy(ctx context.Context, column string) ([]GroupCount, error)
	RunQuery(ctx context.Context, statement string) *QueryExecutionResult
	ExecuteStatement(ctx context.Context, statement string) (int64, error)
	Seed(ctx context.Context) (int, error)
	VerifySchema(ctx context.Context) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository wraps an open connection.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) quote(name string) string {
	return quoteIdentifier(r.db.Dialector.Name(), name)
}

func (r *studentRepository) Query(ctx context.Context, filter StudentFilter) ([]Student, int64, error) {
	where := &Student{
		College:   filter.College,
		Major:     filter.Major,
		ClassName: filter.ClassName,
		Grade:     filter.Grade,
		Gender:    filter.Gender,
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Student{}).Where(where).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	var students []Student
	err := r.db.WithContext(ctx).
		Where(where).
		Order("id").
		Limit(limit).
		Offset(filter.Offset).
		Find(&students).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query students: %w", err)
	}
	return students, total, nil
}

// GetByKey returns every row whose name equals name, as column maps.
func (r *studentRepository) GetByKey(ctx context.Context, name string) ([]map[string]interface{}, error) {
	rows, err := r.db.WithContext(ctx).Table(schema.TableName).Where("name = ?", name).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to read student %q: %w", name, err)
	}
	defer rows.Close()

	_, results, err := processRows(rows)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DistinctValues lists the non-empty values of a column, in column order.
func (r *studentRepository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	if !schema.IsColumn(column) {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	col := r.quote(column)
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s",
		col, r.quote(schema.TableName), col, col)

	rows, err := r.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s values: %w", column, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s value: %w", column, err)
		}
		if s := strings.TrimSpace(v.String); v.Valid && s != "" {
			values = append(values, s)
		}
	}
	return values, rows.Err()
}

// CountBy returns the number of students per value of column.
func (r *studentRepository) CountBy(ctx context.Context, column string) ([]GroupCount, error) {
	if !schema.IsColumn(column) {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	col := r.quote(column)
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s GROUP BY %s ORDER BY %s",
		col, r.quote(schema.TableName), col, col)

	rows, err := r.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", column, err)
	}
	defer rows.Close()

	groups := make([]GroupCount, 0)
	for rows.Next() {
		var (
			v sql.NullString
			n int64
		)
		if err := rows.Scan(&v, &n); err != nil {
			return nil, fmt.Errorf("failed to scan %s group: %w", column, err)
		}
		groups = append(groups, GroupCount{Value: v.String, Count: n})
	}
	return groups, rows.Err()
}

// RunQuery executes a validated read statement.
func (r *studentRepository) RunQuery(ctx context.Context, statement string) *QueryExecutionResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dbmanager.StudentRepository.RunQuery")
	defer span.End()

	startTime := time.Now()
	log.Printf("StudentRepository -> RunQuery -> Query: %v", statement)

	sqlDB, err := r.db.DB()
	if err != nil {
		log.Printf("StudentRepository -> RunQuery -> Failed to get SQL connection: %v", err)
		return &QueryExecutionResult{
			ExecutionTime: elapsedMillis(startTime),
			Error:         &QueryError{Code: CodeConnection, Message: "Failed to get SQL connection", Details: err.Error()},
		}
	}

	rows, err := sqlDB.QueryContext(ctx, statement)
	if err != nil {
		log.Printf("StudentRepository -> RunQuery -> Query execution failed: %v", err)
		span.SetStatus(codes.Error, err.Error())
		return &QueryExecutionResult{ExecutionTime: elapsedMillis(startTime), Error: classifyError(err)}
	}
	defer rows.Close()

	columns, results, err := processRows(rows)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &QueryExecutionResult{
			ExecutionTime: elapsedMillis(startTime),
			Error:         &QueryError{Code: CodeResultProcessing, Message: "Failed to process query results", Details: err.Error()},
		}
	}

	span.SetAttributes(attribute.Int("db.rows", len(results)))
	return &QueryExecutionResult{
		ExecutionTime: elapsedMillis(startTime),
		Columns:       columns,
		Rows:          results,
		Result:        map[string]interface{}{"results": results},
	}
}

// ExecuteStatement runs a confirmed mutating statement and returns the affected row count.
func (r *studentRepository) ExecuteStatement(ctx context.Context, statement string) (int64, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dbmanager.StudentRepository.ExecuteStatement")
	defer span.End()

	log.Printf("StudentRepository -> ExecuteStatement -> Statement: %v", statement)
	sqlDB, err := r.db.DB()
	if err != nil {
		return 0, &QueryError{Code: CodeConnection, Message: "Failed to get SQL connection", Details: err.Error()}
	}

	res, err := sqlDB.ExecContext(ctx, statement)
	if err != nil {
		log.Printf("StudentRepository -> ExecuteStatement -> Execution failed: %v", err)
		span.SetStatus(codes.Error, err.Error())
		return 0, classifyError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, classifyError(err)
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", affected))
	return affected, nil
}

// Seed creates the table if needed and inserts the demo students into an empty table.
func (r *studentRepository) Seed(ctx context.Context) (int, error) {
	if err := r.db.WithContext(ctx).AutoMigrate(&Student{}); err != nil {
		return 0, fmt.Errorf("failed to migrate students: %w", err)
	}
	return r.seedIfEmpty(ctx)
}

func (r *studentRepository) seedIfEmpty(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Student{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	students := demoStudents()
	if err := r.db.WithContext(ctx).Create(&students).Error; err != nil {
		return 0, fmt.Errorf("failed to seed students: %w", err)
	}
	log.Printf("StudentRepository -> Seed -> Inserted %d demo students", len(students))
	return len(students), nil
}

func demoStudents() []Student {
	return []Student{
		{StudentID: "2023001", Name: "张三", ClassName: "软件1班", College: "计算机学院", Major: "软件工程", Grade: 2023, Gender: "男", Phone: "13800000001"},
		{StudentID: "2023002", Name: "李四", ClassName: "计科2班", College: "计算机学院", Major: "计算机科学", Grade: 2023, Gender: "女", Phone: "13800000002"},
		{StudentID: "2023003", Name: "王五", ClassName: "自动化1班", College: "自动化学院", Major: "自动化", Grade: 2022, Gender: "男", Phone: "13800000003"},
		{StudentID: "2023004", Name: "赵六", ClassName: "通信1班", College: "信息工程学院", Major: "通信工程", Grade: 2022, Gender: "女", Phone: "13800000004"},
	}
}
