package dynamodb

import (
	"testing"

	"userdir-backend/domain/user"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSet(t *testing.T, cs *user.ChangeSet, value interface{}, path ...string) {
	t.Helper()
	require.NoError(t, cs.Set(value, path...))
}

func stringValue(t *testing.T, av types.AttributeValue) string {
	t.Helper()
	s, ok := av.(*types.AttributeValueMemberS)
	require.True(t, ok, "expected string attribute value")
	return s.Value
}

func TestCompileUpdate_ScalarField(t *testing.T) {
	cs := user.NewChangeSet()
	mustSet(t, cs, "active", "status")

	compiled, err := compileUpdate(cs)
	require.NoError(t, err)

	assert.Equal(t, "set status = :c1", compiled.Expression)
	assert.Empty(t, compiled.Names)
	assert.Equal(t, "active", stringValue(t, compiled.Values[":c1"]))
}

func TestCompileUpdate_NestedField(t *testing.T) {
	cs := user.NewChangeSet()
	mustSet(t, cs, "a@b.com", "profile", "email")

	compiled, err := compileUpdate(cs)
	require.NoError(t, err)

	assert.Equal(t, "set profile.#p1 = :c1", compiled.Expression)
	assert.Equal(t, map[string]string{"#p1": "email"}, compiled.Names)
	assert.Equal(t, "a@b.com", stringValue(t, compiled.Values[":c1"]))
}

func TestCompileUpdate_DoublyNestedField(t *testing.T) {
	cs := user.NewChangeSet()
	mustSet(t, cs, "X", "profile", "address", "city")

	compiled, err := compileUpdate(cs)
	require.NoError(t, err)

	assert.Equal(t, "set profile.#p1.#pp1 = :c1", compiled.Expression)
	assert.Equal(t, map[string]string{"#p1": "address", "#pp1": "city"}, compiled.Names)
	assert.Equal(t, "X", stringValue(t, compiled.Values[":c1"]))
}

func TestCompileUpdate_MixedChangesShareOneCounter(t *testing.T) {
	cs := user.NewChangeSet()
	mustSet(t, cs, "active", "status")
	mustSet(t, cs, "a@b.com", "profile", "email")
	mustSet(t, cs, "X", "profile", "address", "city")

	compiled, err := compileUpdate(cs)
	require.NoError(t, err)

	assert.Equal(t, "set status = :c1, profile.#p2 = :c2, profile.#p3.#pp3 = :c3", compiled.Expression)
	assert.Equal(t, map[string]string{
		"#p2":  "email",
		"#p3":  "address",
		"#pp3": "city",
	}, compiled.Names)
	assert.Len(t, compiled.Values, 3)
}

func TestCompileUpdate_Deterministic(t *testing.T) {
	build := func() *user.ChangeSet {
		cs := user.NewChangeSet()
		mustSet(t, cs, 42, "score")
		mustSet(t, cs, "a@b.com", "profile", "email")
		return cs
	}

	first, err := compileUpdate(build())
	require.NoError(t, err)
	second, err := compileUpdate(build())
	require.NoError(t, err)

	assert.Equal(t, first.Expression, second.Expression)
	assert.Equal(t, first.Names, second.Names)
	assert.Len(t, second.Values, len(first.Values))
}

func TestCompileUpdate_MarshalsNonStringValues(t *testing.T) {
	cs := user.NewChangeSet()
	mustSet(t, cs, 7, "loginCount")

	compiled, err := compileUpdate(cs)
	require.NoError(t, err)

	n, ok := compiled.Values[":c1"].(*types.AttributeValueMemberN)
	require.True(t, ok, "expected numeric attribute value")
	assert.Equal(t, "7", n.Value)
}
