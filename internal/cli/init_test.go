package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"desembolsos/internal/config"
	applog "desembolsos/internal/log"
	"desembolsos/internal/source/csvfile"
	"desembolsos/internal/source/xlsx"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestOpenSource(t *testing.T) {
	ctx := context.Background()

	r, err := OpenSource(ctx, &config.Config{SourceKind: config.SourceCSV, SourcePath: "a.csv", SourceDelimiter: ";"})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if c, ok := r.(*csvfile.Reader); !ok || c.Delimiter != ';' || c.Path != "a.csv" {
		t.Errorf("csv reader = %#v", r)
	}

	r, err = OpenSource(ctx, &config.Config{SourceKind: config.SourceXLSX, SourcePath: "a.xlsx", SourceSheet: "S"})
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if x, ok := r.(*xlsx.Reader); !ok || x.Sheet != "S" {
		t.Errorf("xlsx reader = %#v", r)
	}

	if _, err := OpenSource(ctx, &config.Config{SourceKind: config.SourceSheets}); err == nil {
		t.Error("sheets without spreadsheet id should fail")
	}
	if _, err := OpenSource(ctx, &config.Config{SourceKind: "ftp"}); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desembolsos.csv")
	content := "PROCESSO,ÁREA DO CONHECIMENTO,UNIDADE,EMPRESA/PARCEIRO,FUNDAÇÃO,01/2025,02/2025\n" +
		"P1,Saúde,UFX,Acme,FUNDEP,\"R$ 1.000,00\",x\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{SourceKind: config.SourceCSV, SourcePath: path, SourceDelimiter: ","}
	ds, err := LoadDataset(context.Background(), quietLogger(), cfg)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	st := ds.Stats()
	if st.Records != 2 || st.Periods != 2 || st.Coerced != 1 {
		t.Errorf("stats = %+v", st)
	}

	cfg.SourcePath = filepath.Join(dir, "missing.csv")
	if _, err := LoadDataset(context.Background(), quietLogger(), cfg); err == nil {
		t.Error("missing file should fail")
	}
}

type fakeServer struct {
	stopped  chan struct{}
	shutdown atomic.Int32
	listen   error
}

func (f *fakeServer) ListenAndServe() error {
	if f.listen != nil {
		return f.listen
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdown.Add(1) == 1 {
		close(f.stopped)
	}
	return nil
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := &fakeServer{stopped: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, quietLogger(), srv, time.Second) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if srv.shutdown.Load() != 1 {
		t.Errorf("Shutdown called %d times", srv.shutdown.Load())
	}
}

func TestServeReportsListenError(t *testing.T) {
	want := errors.New("address in use")
	srv := &fakeServer{stopped: make(chan struct{}), listen: want}

	err := Serve(context.Background(), quietLogger(), srv, time.Second)
	if !errors.Is(err, want) {
		t.Errorf("Serve() = %v, want %v", err, want)
	}
}
