package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrKey(t *testing.T) {
	key := strKey("email", "a@x.com")
	require.Len(t, key, 1)
	assert.Equal(t, "a@x.com", key["email"].(*types.AttributeValueMemberS).Value)
}

func TestCompositeKey(t *testing.T) {
	key := compositeKey("post_id", "p1", "user_id", "u1")
	require.Len(t, key, 2)
	assert.Equal(t, "p1", key["post_id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "u1", key["user_id"].(*types.AttributeValueMemberS).Value)
}

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{"name": "Maria"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", expr)
	assert.Equal(t, "name", names["#f0"])
	assert.Equal(t, "Maria", values[":v0"].(*types.AttributeValueMemberS).Value)
}

func TestBuildUpdateExpr_MultipleFields(t *testing.T) {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		"name":  "Maria",
		"phone": "11999990000",
	})
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Len(t, values, 2)
	assert.Contains(t, expr, "SET ")
	assert.Contains(t, expr, ", ")
}

func TestBuildUpdateExpr_Empty(t *testing.T) {
	_, _, _, err := buildUpdateExpr(map[string]interface{}{})
	assert.Error(t, err)
}
