// Package admin is the diagnostic/administrative surface of SPEC_FULL.md
// §5: a small chi-routed HTTP server exposing read-only health and
// shape/occupancy statistics over a buffer manager, base relation, and
// B+-tree index, the way the reference codebase's pkg/server exposes
// /_health and /_stats over a full database.
package admin

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mnohosten/bufbtree/pkg/btree"
	"github.com/mnohosten/bufbtree/pkg/relation"
	"github.com/mnohosten/bufbtree/pkg/storage"
)

// demoTupleSize is the fixed tuple layout demo data is written with:
// a 4-byte little-endian int32 key at offset 0 (AttrByteOffset must
// agree), followed by a fixed-width text payload.
const demoTupleSize = 4 + 32

// Server owns the storage engine core (buffer manager, relation, index)
// plus the HTTP surface over it.
type Server struct {
	config *Config

	bm      *storage.BufferManager
	relFile storage.File
	rel     *relation.BaseRelation
	idx     *btree.Index

	router    *chi.Mux
	httpSrv   *http.Server
	startTime time.Time
}

// New opens (or creates) the data directory, relation file, and index
// file described by config, and prepares the HTTP router. It does not
// start listening — call Start for that.
func New(config *Config) (*Server, error) {
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("admin: create data dir %s: %w", config.DataDir, err)
	}

	bm := storage.NewBufferManager(config.BufferFrames)

	relPath := filepath.Join(config.DataDir, config.RelationName)
	relExisted := storage.FileExists(relPath)
	relFile, err := openOrCreateDiskFile(relPath, relExisted)
	if err != nil {
		return nil, fmt.Errorf("admin: open relation file: %w", err)
	}

	rel, err := relation.NewBaseRelation(relFile, bm, false)
	if err != nil {
		return nil, fmt.Errorf("admin: open base relation: %w", err)
	}

	if !relExisted && config.LoadDemoData {
		if err := loadDemoData(rel, config.DemoRecordCount); err != nil {
			return nil, fmt.Errorf("admin: load demo data: %w", err)
		}
	}

	openFile := func(name string) (storage.File, bool, error) {
		path := filepath.Join(config.DataDir, name)
		existed := storage.FileExists(path)
		f, err := openOrCreateDiskFile(path, existed)
		return f, existed, err
	}
	scannerFn := func() (relation.Scanner, error) {
		return relation.NewScanner(rel)
	}

	idx, _, err := btree.OpenOrCreate(config.RelationName, config.AttrByteOffset, btree.AttrInt32, bm, openFile, scannerFn, btree.Options{})
	if err != nil {
		return nil, fmt.Errorf("admin: open index: %w", err)
	}

	srv := &Server{
		config:    config,
		bm:        bm,
		relFile:   relFile,
		rel:       rel,
		idx:       idx,
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}
	srv.setupMiddleware()
	srv.setupRoutes()

	srv.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      srv.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

func openOrCreateDiskFile(path string, existed bool) (storage.File, error) {
	if existed {
		return storage.OpenDiskFile(path)
	}
	return storage.CreateDiskFile(path)
}

func loadDemoData(rel *relation.BaseRelation, count int) error {
	tuple := make([]byte, demoTupleSize)
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint32(tuple[0:4], uint32(i))
		payload := fmt.Sprintf("demo-tuple-%06d", i)
		for j := range tuple[4:] {
			tuple[4+j] = 0
		}
		copy(tuple[4:], payload)
		if _, err := rel.Insert(tuple); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/stats", s.handleStats)
}

// Start runs the HTTP server until it errors or a termination signal
// arrives, at which point it shuts down gracefully.
func (s *Server) Start() error {
	fmt.Printf("bufbtreeadmin starting on http://%s\n", s.httpSrv.Addr)
	fmt.Printf("data directory: %s\n", s.config.DataDir)
	fmt.Printf("buffer pool: %d frames\n", s.config.BufferFrames)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("admin: http server: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		fmt.Printf("received signal: %v, shutting down\n", sig)
		return s.Shutdown()
	}
}

// Shutdown stops the HTTP server and closes the storage engine core:
// the index (which flushes its file), the buffer manager (which
// flushes every remaining dirty frame), then the relation's file
// handle.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "admin: http shutdown error: %v\n", err)
	}
	if err := s.idx.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "admin: index close error: %v\n", err)
	}
	if err := s.bm.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "admin: buffer manager close error: %v\n", err)
	}
	return s.relFile.Close()
}
