package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_GetConsistencyLevel(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StrongConsistency, GetConsistencyLevel(ctx))
	assert.Equal(t, EventualConsistency, GetConsistencyLevel(WithEventualConsistency(ctx)))
	assert.Equal(t, StrongConsistency, GetConsistencyLevel(WithStrongConsistency(WithEventualConsistency(ctx))))
	assert.Equal(t, "eventual", EventualConsistency.String())
}
