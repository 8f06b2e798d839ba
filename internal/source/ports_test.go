package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	tbl, err := NewTable([][]string{
		{"\ufeffPROCESSO", " UNIDADE ", "01/2025", ""},
		{"P1", "UFX", "R$ 1,00", "extra", "more"},
		{"", " ", ""},
		{"P2"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"PROCESSO", "UNIDADE", "01/2025"}, tbl.Header)
	require.Equal(t, [][]string{
		{"P1", "UFX", "R$ 1,00"},
		{"P2", "", ""},
	}, tbl.Rows)
}

func TestNewTableEmpty(t *testing.T) {
	_, err := NewTable(nil)
	require.ErrorIs(t, err, ErrEmptyTable)

	_, err = NewTable([][]string{{"", " "}})
	require.ErrorIs(t, err, ErrEmptyTable)
}
