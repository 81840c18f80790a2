package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusWithoutChecks(t *testing.T) {
	r := NewService().Status(context.Background())
	assert.True(t, r.OK)
	assert.Nil(t, r.Checks)
}

func TestStatusReportsFailures(t *testing.T) {
	svc := NewService()
	svc.Register("database", func(context.Context) error { return nil })
	svc.Register("cache", func(context.Context) error { return errors.New("dial tcp: refused") })
	svc.Register("ignored", nil)

	r := svc.Status(context.Background())
	assert.False(t, r.OK)
	assert.Equal(t, map[string]string{"database": "ok", "cache": "dial tcp: refused"}, r.Checks)
}
