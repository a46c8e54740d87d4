package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func urType() *ArgumentDefinition {
	return &ArgumentDefinition{
		Name:    "ur_type",
		Choices: []string{"ur3", "ur5", "ur5e"},
		Default: strPtr("ur5e"),
	}
}

func TestResolveArguments(t *testing.T) {
	t.Run("default applies", func(t *testing.T) {
		got, err := ResolveArguments([]*ArgumentDefinition{urType()}, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ur_type": "ur5e"}, got)
	})

	t.Run("override wins", func(t *testing.T) {
		got, err := ResolveArguments([]*ArgumentDefinition{urType()}, map[string]string{"ur_type": "ur3"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ur_type": "ur3"}, got)
	})

	t.Run("free-form argument", func(t *testing.T) {
		defs := []*ArgumentDefinition{{Name: "world", Default: strPtr("empty.world")}}
		got, err := ResolveArguments(defs, map[string]string{"world": "desk.world"})
		require.NoError(t, err)
		assert.Equal(t, "desk.world", got["world"])
	})

	t.Run("value outside choices", func(t *testing.T) {
		_, err := ResolveArguments([]*ArgumentDefinition{urType()}, map[string]string{"ur_type": "ur99"})
		assert.ErrorContains(t, err, `invalid value "ur99" for launch argument "ur_type": must be one of [ur3, ur5, ur5e]`)
	})

	t.Run("undeclared override", func(t *testing.T) {
		_, err := ResolveArguments([]*ArgumentDefinition{urType()}, map[string]string{"zeta": "1", "alpha": "2"})
		assert.ErrorContains(t, err, "undeclared launch arguments: alpha, zeta")
	})

	t.Run("missing required value", func(t *testing.T) {
		_, err := ResolveArguments([]*ArgumentDefinition{{Name: "robot"}}, nil)
		assert.ErrorContains(t, err, `launch argument "robot" requires a value`)
	})

	t.Run("bad default", func(t *testing.T) {
		def := urType()
		def.Default = strPtr("ur10")
		_, err := ResolveArguments([]*ArgumentDefinition{def}, nil)
		assert.ErrorContains(t, err, "is not one of its choices")
	})

	t.Run("duplicate declaration", func(t *testing.T) {
		_, err := ResolveArguments([]*ArgumentDefinition{urType(), urType()}, nil)
		assert.ErrorContains(t, err, "declared more than once")
	})
}
