package validator

import (
	"testing"

	"neuro-sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_User(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		user      *models.User
		wantError bool
		errorMsg  string
	}{
		{
			name:      "Valid user",
			user:      models.NewUser("Ada", "ada@example.com", "Africa/Nairobi"),
			wantError: false,
		},
		{
			name:      "Missing name",
			user:      models.NewUser("", "ada@example.com", "UTC"),
			wantError: true,
			errorMsg:  "name is required",
		},
		{
			name:      "Invalid email",
			user:      models.NewUser("Ada", "not-an-email", "UTC"),
			wantError: true,
			errorMsg:  "email must be a valid email address",
		},
		{
			name:      "Unknown timezone",
			user:      models.NewUser("Ada", "ada@example.com", "Mars/Olympus"),
			wantError: true,
			errorMsg:  "timezone must be a valid IANA timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.user)

			if tt.wantError {
				assert.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Task(t *testing.T) {
	v := New()
	long := string(make([]byte, 501))

	tests := []struct {
		name      string
		mutate    func(*models.Task)
		wantError bool
		errorMsg  string
	}{
		{
			name:      "Valid task",
			mutate:    func(*models.Task) {},
			wantError: false,
		},
		{
			name:      "Title too short",
			mutate:    func(task *models.Task) { task.Title = "ab" },
			wantError: true,
			errorMsg:  "title must be at least 3 characters",
		},
		{
			name:      "Description too long",
			mutate:    func(task *models.Task) { task.Description = &long },
			wantError: true,
			errorMsg:  "description must be at most 500 characters",
		},
		{
			name:      "Unknown status",
			mutate:    func(task *models.Task) { task.Status = "archived" },
			wantError: true,
			errorMsg:  `status has unknown value "archived"`,
		},
		{
			name: "Negative estimate",
			mutate: func(task *models.Task) {
				n := -5
				task.EstimatedDuration = &n
			},
			wantError: true,
			errorMsg:  "estimated_duration must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := models.NewTask("user-1", "Write report")
			tt.mutate(task)
			err := v.Validate(task)

			if tt.wantError {
				assert.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_XPEntry(t *testing.T) {
	v := New()

	err := v.Validate(models.NewXPEntry("user-1", models.XPSourceStreakBonus, -10))
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "points", errs[0].Field)
	assert.Equal(t, "gte", errs[0].Tag)
}

func TestValidator_NonStruct(t *testing.T) {
	v := New()
	err := v.Validate(nil)
	require.Error(t, err)

	_, ok := err.(ValidationErrors)
	assert.False(t, ok)
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "name is required", Tag: "required"},
		{Field: "status", Message: "status has unknown value", Tag: "enum"},
	}

	errMsg := errs.Error()
	assert.Contains(t, errMsg, "name is required")
	assert.Contains(t, errMsg, "status has unknown value")
}
