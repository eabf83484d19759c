package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tiancaiamao/allocbench"
	"github.com/tiancaiamao/allocbench/internal/report"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

type server struct {
	dataDir   string
	baseline  string
	candidate string
	logger    *zap.Logger

	// uploadMu serializes uploads so none is lost between reading the
	// current results and publishing the regenerated pages.
	uploadMu sync.Mutex

	mu          sync.RWMutex
	results     *allocbench.Results
	mainPage    []byte
	programPage []byte
}

func newServer(dataDir, baseline, candidate string, logger *zap.Logger) (*server, error) {
	s := &server{
		dataDir:   dataDir,
		baseline:  baseline,
		candidate: candidate,
		logger:    logger,
	}
	res, err := allocbench.LoadResultsDir(dataDir, baseline, candidate)
	if err != nil {
		return nil, err
	}
	if err := s.reGeneratePage(res); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *server) mainHandle(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.mainPage)
}

func (s *server) programHandle(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.programPage)
}

func (s *server) uploadHandle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method should be POST", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	name := r.URL.Query().Get("name")
	if !validName.MatchString(name) {
		http.Error(w, fmt.Sprintf("invalid program name %q", name), http.StatusBadRequest)
		return
	}

	p, err := allocbench.ReadProgram(r.Body, name, s.baseline, s.candidate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	dir := filepath.Join(s.dataDir, allocbench.ProgramDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	outfile := filepath.Join(dir, name+".json")
	if err := allocbench.WriteProgramFile(outfile, p, s.baseline, s.candidate); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.RLock()
	res := withProgram(s.results, p)
	s.mu.RUnlock()
	if err := s.reGeneratePage(res); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("program uploaded", zap.String("program", name), zap.String("file", outfile))
	w.WriteHeader(http.StatusCreated)
}

// withProgram returns a copy of res where p replaces the program of the
// same name, or is added in name order.
func withProgram(res *allocbench.Results, p allocbench.ProgramBench) *allocbench.Results {
	next := *res
	next.Programs = make([]allocbench.ProgramBench, 0, len(res.Programs)+1)
	for _, old := range res.Programs {
		if old.Name != p.Name {
			next.Programs = append(next.Programs, old)
		}
	}
	next.Programs = append(next.Programs, p)
	sort.Slice(next.Programs, func(i, j int) bool {
		return next.Programs[i].Name < next.Programs[j].Name
	})
	return &next
}

func (s *server) reGeneratePage(res *allocbench.Results) error {
	sum, err := res.Summarize(s.baseline, s.candidate)
	if err != nil {
		return err
	}

	var mainBuf, programBuf bytes.Buffer
	if err := report.Render(&mainBuf, report.UnitPage(res.Units, s.baseline, s.candidate)); err != nil {
		return err
	}
	if err := report.Render(&programBuf, report.ProgramPage(sum)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = res
	s.mainPage = mainBuf.Bytes()
	s.programPage = programBuf.Bytes()
	return nil
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.mainHandle)
	mux.HandleFunc("/program", s.programHandle)
	mux.HandleFunc("/upload", s.uploadHandle)
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

func main() {
	dataDir := flag.String("data", "results", "results directory with unit/ and program/")
	addr := flag.String("addr", ":18081", "listen address")
	baseline := flag.String("baseline", allocbench.Libc, "name of the reference allocator")
	candidate := flag.String("candidate", allocbench.Challoc, "name of the allocator under test")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger, err := allocbench.NewLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	s, err := newServer(*dataDir, *baseline, *candidate, logger)
	if err != nil {
		logger.Fatal("loading results", zap.String("dir", *dataDir), zap.Error(err))
	}

	logger.Info("listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, s.routes()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
