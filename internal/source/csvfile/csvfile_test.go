package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `PROCESSO,ÁREA DO CONHECIMENTO,UNIDADE,EMPRESA/PARCEIRO,FUNDAÇÃO,01/2025,02/2025
P1,Saúde,UFX,Acme,FUNDEP,"R$ 1.234,56",
P2,Energia,UFY,Globex,FAPEX,"R$ 10,00","R$ 20,00"
`

func TestReaderRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	tbl, err := New(path, 0).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, tbl.Header, 7)
	require.Len(t, tbl.Rows, 2)
	require.Equal(t, "R$ 1.234,56", tbl.Rows[0][5])
	require.Equal(t, "", tbl.Rows[0][6])
}

func TestReaderMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.csv"), ',').Read(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSemicolon(t *testing.T) {
	in := "PROCESSO;01/2025\nP1;R$ 5,00\n"
	tbl, err := Parse(context.Background(), strings.NewReader(in), ';')
	require.NoError(t, err)
	require.Equal(t, []string{"PROCESSO", "01/2025"}, tbl.Header)
	require.Equal(t, "R$ 5,00", tbl.Rows[0][1])
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, strings.NewReader(sample), ',')
	require.ErrorIs(t, err, context.Canceled)
}
