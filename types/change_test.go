package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChangeKindString(t *testing.T) {
	cases := map[ChangeKind]string{
		ChangeItemAdded:         "ItemAdded",
		ChangeItemRemoved:       "ItemRemoved",
		ChangeItemKeyChanged:    "ItemKeyChanged",
		ChangeItemValueChanged:  "ItemValueChanged",
		ChangeItemValueReplaced: "ItemValueReplaced",
		ChangeReset:             "Reset",
		ChangeKind(99):          "Unknown",
	}
	for kind, want := range cases {
		require.Equal(t, want, kind.String())
	}
}

func TestChangeConstructors(t *testing.T) {
	t.Run("item added carries key and value", func(t *testing.T) {
		c := NewItemAdded("k", 7)
		require.Equal(t, ChangeItemAdded, c.Kind)
		require.Equal(t, "k", c.Key)
		require.Equal(t, 7, c.Value)
		require.Empty(t, c.PropertyName)
		require.NoError(t, c.Validate())
	})

	t.Run("item removed carries key and value", func(t *testing.T) {
		c := NewItemRemoved("k", 7)
		require.Equal(t, ChangeItemRemoved, c.Kind)
		require.Equal(t, "k", c.Key)
		require.Equal(t, 7, c.Value)
		require.NoError(t, c.Validate())
	})

	t.Run("key changed carries property name and zero value", func(t *testing.T) {
		c := NewItemKeyChanged[string, int]("k", "Name")
		require.Equal(t, ChangeItemKeyChanged, c.Kind)
		require.Equal(t, "Name", c.PropertyName)
		require.Zero(t, c.Value)
		require.NoError(t, c.Validate())
	})

	t.Run("value changed carries key, value and property name", func(t *testing.T) {
		c := NewItemValueChanged("k", 7, "Amount")
		require.Equal(t, ChangeItemValueChanged, c.Kind)
		require.Equal(t, 7, c.Value)
		require.Equal(t, "Amount", c.PropertyName)
		require.NoError(t, c.Validate())
	})

	t.Run("value replaced carries old and new values", func(t *testing.T) {
		c := NewItemValueReplaced("k", 2, 1)
		require.Equal(t, ChangeItemValueReplaced, c.Kind)
		require.Equal(t, 2, c.Value)
		require.Equal(t, 1, c.ReplacedValue)
		require.NoError(t, c.Validate())
	})

	t.Run("reset carries nothing", func(t *testing.T) {
		c := NewReset[string, int]()
		require.Equal(t, ChangeReset, c.Kind)
		require.Zero(t, c.Key)
		require.Zero(t, c.Value)
		require.NoError(t, c.Validate())
	})

	t.Run("zero values of non-reference types are legal", func(t *testing.T) {
		c := NewItemAdded(0, "")
		require.NoError(t, c.Validate())
		require.Zero(t, c.Key)
	})

	t.Run("nil pointer key panics", func(t *testing.T) {
		require.Panics(t, func() {
			NewItemAdded[*int, string](nil, "v")
		})
	})
}

func TestChangeValidate(t *testing.T) {
	t.Run("reset with stray fields is invalid", func(t *testing.T) {
		c := Change[string, int]{Kind: ChangeReset, Key: "k"}
		require.ErrorIs(t, c.Validate(), ErrInvalidChange)
	})

	t.Run("added with replaced value is invalid", func(t *testing.T) {
		c := Change[string, int]{Kind: ChangeItemAdded, Key: "k", ReplacedValue: 1}
		require.ErrorIs(t, c.Validate(), ErrInvalidChange)
	})

	t.Run("added with property name is invalid", func(t *testing.T) {
		c := Change[string, int]{Kind: ChangeItemAdded, Key: "k", PropertyName: "Name"}
		require.ErrorIs(t, c.Validate(), ErrInvalidChange)
	})

	t.Run("key changed with replaced value is invalid", func(t *testing.T) {
		c := Change[string, int]{Kind: ChangeItemKeyChanged, Key: "k", ReplacedValue: 1}
		require.ErrorIs(t, c.Validate(), ErrInvalidChange)
	})

	t.Run("replaced with property name is invalid", func(t *testing.T) {
		c := Change[string, int]{Kind: ChangeItemValueReplaced, Key: "k", PropertyName: "Name"}
		require.ErrorIs(t, c.Validate(), ErrInvalidChange)
	})

	t.Run("nil key on item kinds is invalid", func(t *testing.T) {
		c := Change[*int, string]{Kind: ChangeItemRemoved}
		require.ErrorIs(t, c.Validate(), ErrInvalidChange)
	})

	t.Run("unknown kind is invalid", func(t *testing.T) {
		c := Change[string, int]{Kind: ChangeKind(42), Key: "k"}
		require.ErrorIs(t, c.Validate(), ErrInvalidChange)
	})

	t.Run("validate errors unwrap to the sentinel", func(t *testing.T) {
		c := Change[string, int]{Kind: ChangeReset, PropertyName: "x"}
		require.True(t, errors.Is(c.Validate(), ErrInvalidChange))
	})
}

func TestChangeString(t *testing.T) {
	require.Equal(t, "Reset", NewReset[string, int]().String())
	require.Contains(t, NewItemAdded("k", 7).String(), "ItemAdded")
	require.Contains(t, NewItemKeyChanged[string, int]("k", "Name").String(), `property="Name"`)
	require.Contains(t, NewItemValueReplaced("k", 2, 1).String(), "replaced=1")
}
