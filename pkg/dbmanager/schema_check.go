package dbmanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/hq040506/DL-student-assistant/pkg/schema"
)

// VerifySchema checks that the live students table carries every column the
// planner generates statements against.
func (r *studentRepository) VerifySchema(ctx context.Context) error {
	migrator := r.db.WithContext(ctx).Migrator()
	if !migrator.HasTable(&Student{}) {
		return fmt.Errorf("table %s does not exist", schema.TableName)
	}

	columnTypes, err := migrator.ColumnTypes(&Student{})
	if err != nil {
		return fmt.Errorf("failed to fetch columns of %s: %w", schema.TableName, err)
	}

	live := make(map[string]struct{}, len(columnTypes))
	for _, ct := range columnTypes {
		live[strings.ToLower(ct.Name())] = struct{}{}
	}

	var missing []string
	for _, c := range schema.Columns {
		if _, ok := live[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", schema.TableName, strings.Join(missing, ", "))
	}
	return nil
}
