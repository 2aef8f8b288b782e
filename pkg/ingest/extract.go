package ingest

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	manifestNames   = map[string]bool{"go.mod": true, "package.json": true, "pom.xml": true, "Cargo.toml": true, "requirements.txt": true}
	ciConfigSuffix  = []string{".github/workflows", ".gitlab-ci.yml", "Jenkinsfile", ".circleci/config.yml"}
	dockerfileNames = map[string]bool{"Dockerfile": true, "Containerfile": true}
)

// ExtractMetadata walks the cloned tree, fanning out per-file
// classification across bounded goroutines with golang.org/x/sync/errgroup
// — grounded on pkg/queue/pool.go's bounded-concurrency worker shape,
// applied here to a one-shot fan-out instead of a long-lived pool.
func ExtractMetadata(ctx context.Context, repoDir string, maxConcurrent int) (*Metadata, error) {
	var paths []string
	err := filepath.WalkDir(repoDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	md := &Metadata{
		Manifests:   []string{},
		Dockerfiles: []string{},
		CIConfigs:   []string{},
		ImportGraph: make(map[string][]string),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, p := range paths {
		p := p
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			classify(repoDir, p, md, &mu)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	md.PackageCount = len(md.ImportGraph)
	return md, nil
}

func classify(repoDir, path string, md *Metadata, mu *sync.Mutex) {
	rel, err := filepath.Rel(repoDir, path)
	if err != nil {
		return
	}
	base := filepath.Base(path)

	switch {
	case manifestNames[base]:
		mu.Lock()
		md.Manifests = append(md.Manifests, rel)
		mu.Unlock()
	case dockerfileNames[base]:
		mu.Lock()
		md.Dockerfiles = append(md.Dockerfiles, rel)
		mu.Unlock()
	case strings.ToUpper(base) == "README.MD" || base == "README":
		if content, err := os.ReadFile(path); err == nil {
			mu.Lock()
			if md.README == "" {
				md.README = string(content)
			}
			mu.Unlock()
		}
	case strings.HasSuffix(path, ".go"):
		extractGoImports(path, rel, md, mu)
	}

	for _, suffix := range ciConfigSuffix {
		if strings.Contains(rel, suffix) {
			mu.Lock()
			md.CIConfigs = append(md.CIConfigs, rel)
			mu.Unlock()
			break
		}
	}
}

// extractGoImports parses one Go file's import list, building a
// package-level import graph. This is intentionally shallow: no AST call
// graph, no cross-package type resolution (§4.11 Non-goals).
func extractGoImports(path, rel string, md *Metadata, mu *sync.Mutex) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return
	}

	pkg := filepath.Dir(rel)
	imports := make([]string, 0, len(f.Imports))
	for _, imp := range f.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, `"`))
	}

	mu.Lock()
	md.ImportGraph[pkg] = append(md.ImportGraph[pkg], imports...)
	mu.Unlock()
}
