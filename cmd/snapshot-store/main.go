package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"

	"github.com/styleml/gantrain/pkg/blobs"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := klog.FromContext(ctx)

	listen := ":8080"
	resultsDir := os.Getenv("RESULTS_DIR")
	if resultsDir == "" {
		// We expect RESULTS_DIR to be set when running on kubernetes, but default sensibly for local dev
		resultsDir = "~/results"
	}
	flag.StringVar(&listen, "listen", listen, "listen address")
	flag.StringVar(&resultsDir, "results-dir", resultsDir, "training results directory")
	flag.Parse()

	if strings.HasPrefix(resultsDir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		resultsDir = filepath.Join(homeDir, strings.TrimPrefix(resultsDir, "~/"))
	}

	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return fmt.Errorf("creating results directory %q: %w", resultsDir, err)
	}

	var blobstore blobs.Blobstore
	if resultsBucket := os.Getenv("RESULTS_BUCKET"); resultsBucket != "" {
		if !strings.HasPrefix(resultsBucket, "gs://") {
			return fmt.Errorf("RESULTS_BUCKET must be a GCS bucket URL (gs://<bucketName>)")
		}
		bucket := strings.TrimPrefix(resultsBucket, "gs://")
		log.Info("mirroring results from GCS", "bucket", bucket)
		blobstore = &blobs.GCSBlobstore{Bucket: bucket}
	}

	artifacts := &artifactCache{
		BaseDir:   resultsDir,
		blobstore: blobstore,
	}

	s := &httpServer{
		artifacts: artifacts,
	}

	klog.Infof("serving on %q", listen)
	if err := http.ListenAndServe(listen, s); err != nil {
		return fmt.Errorf("serving on %q: %w", listen, err)
	}

	return nil
}

type httpServer struct {
	artifacts *artifactCache
}

func (s *httpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokens := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if len(tokens) == 2 {
		if r.Method == "GET" {
			s.serveGETArtifact(w, r, tokens[0], tokens[1])
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.Error(w, "not found", http.StatusNotFound)
}

func (s *httpServer) serveGETArtifact(w http.ResponseWriter, r *http.Request, runID string, name string) {
	ctx := r.Context()

	log := klog.FromContext(ctx)

	f, err := s.artifacts.Get(ctx, runID, name)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if status.Code(err) == codes.InvalidArgument {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		log.Error(err, "error getting artifact")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	p := f.Name()

	klog.Infof("serving artifact %q", p)
	http.ServeFile(w, r, p)
}

// Run IDs look like 00003-stylegan2-mydataset; artifact names are
// checkpoint or snapshot-grid files. Anything else is rejected before
// touching the filesystem.
var (
	runIDPattern    = regexp.MustCompile(`^[0-9]+[A-Za-z0-9._-]*$`)
	artifactPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

type artifactCache struct {
	BaseDir   string
	blobstore blobs.Blobstore
}

// Get returns the named artifact of a run, fetching it from the
// results bucket when it is not on local disk.
func (c *artifactCache) Get(ctx context.Context, runID string, name string) (*os.File, error) {
	if !runIDPattern.MatchString(runID) {
		return nil, status.Errorf(codes.InvalidArgument, "invalid run id %q", runID)
	}
	if !artifactPattern.MatchString(name) || strings.HasPrefix(name, ".") {
		return nil, status.Errorf(codes.InvalidArgument, "invalid artifact name %q", name)
	}

	localPath := filepath.Join(c.BaseDir, runID, name)
	f, err := os.Open(localPath)
	if err == nil {
		return f, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("opening artifact %q: %w", localPath, err)
	}

	if c.blobstore == nil {
		return nil, status.Errorf(codes.NotFound, "artifact %q not found", runID+"/"+name)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	if err := c.blobstore.Download(ctx, runID+"/"+name, localPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, status.Errorf(codes.NotFound, "artifact %q not found", runID+"/"+name)
		}
		return nil, fmt.Errorf("fetching artifact %q: %w", runID+"/"+name, err)
	}

	f, err = os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("opening artifact %q: %w", localPath, err)
	}
	return f, nil
}
