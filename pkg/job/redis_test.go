package job_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailforge/pkg/job"
)

func TestNewRedis_NilClient(t *testing.T) {
	t.Parallel()
	_, err := job.NewRedis(nil)
	assert.ErrorIs(t, err, job.ErrClientRequired)
}
