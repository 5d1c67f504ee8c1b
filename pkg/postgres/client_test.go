package postgres

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pq.Error{Code: UniqueViolation, Constraint: "users_email_key"})
	constraint, ok := IsUniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "users_email_key", constraint)

	_, ok = IsUniqueViolation(&pq.Error{Code: "23503"})
	assert.False(t, ok)

	_, ok = IsUniqueViolation(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
