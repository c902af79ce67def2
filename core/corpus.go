package core

import (
	"context"

	"github.com/huangsam/timelapse/core/agg"
	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/loader"
	"github.com/huangsam/timelapse/schema"
	"github.com/sirupsen/logrus"
)

// Corpus is a loaded input table and its commits.
type Corpus struct {
	Path     string                     `json:"path"`
	Records  []schema.LineRecord        `json:"-"`
	Rejected []loader.MalformedRowError `json:"rejected,omitempty"`
	Commits  []schema.Commit            `json:"-"`
	Stats    schema.Stats               `json:"stats"`
	CacheHit bool                       `json:"cache_hit"`
}

// LoadCorpus reads the configured input table and groups it into commits.
// Corpus-wide stats are computed once here.
func LoadCorpus(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Corpus, error) {
	res, hit, err := cachedRead(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	res, err = loader.Finish(res, loader.Options{Strict: cfg.Strict})
	if err != nil {
		return nil, err
	}
	return NewCorpus(cfg.InputPath, res, cfg.URLPrefix, hit), nil
}

// NewCorpus groups loaded records into a corpus.
func NewCorpus(path string, res *loader.Result, urlPrefix string, cacheHit bool) *Corpus {
	log := contract.Logger()
	commits := agg.GroupCommits(res.Records, urlPrefix, func(c agg.Conflict) {
		log.WithFields(logrus.Fields{
			"commit":  c.CommitID,
			"field":   c.Field,
			"kept":    c.Kept,
			"ignored": c.Ignored,
			"file":    c.Record.File,
			"line":    c.Record.Line,
		}).Warn("commit metadata disagrees with first record")
	})
	if len(commits) == 0 {
		log.WithField("path", path).Info("input table has no commits")
	}
	return &Corpus{
		Path:     path,
		Records:  res.Records,
		Rejected: res.Rejected,
		Commits:  commits,
		Stats:    agg.ComputeStats(res.Records, commits),
		CacheHit: cacheHit,
	}
}

// NewSession builds a session over the corpus and applies the configured
// cursor and brush.
func NewSession(corpus *Corpus, cfg *contract.Config, opts ...session.Option) (*session.Session, error) {
	s := session.New(corpus.Commits, opts...)
	if err := ApplyCursor(s, cfg.Cursor); err != nil {
		return nil, err
	}
	if cfg.Brush != nil {
		s.SetSelection(cfg.Brush)
	}
	return s, nil
}

// ApplyCursor moves the session cursor to spec. An unset spec leaves it alone.
func ApplyCursor(s *session.Session, spec contract.CursorSpec) error {
	if !spec.Set {
		return nil
	}
	if spec.Progress != nil {
		s.SetProgress(*spec.Progress)
		return nil
	}
	_, newest := s.Scale().Extent()
	t, ok, err := spec.ResolveTime(newest)
	if err != nil {
		return err
	}
	if ok {
		s.SetCursor(t)
	}
	return nil
}
