package sync

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/repo-file-sync/internal/diff"
	appErrors "github.com/mrz1836/repo-file-sync/internal/errors"
	"github.com/mrz1836/repo-file-sync/internal/gh"
	"github.com/mrz1836/repo-file-sync/internal/git"
	"github.com/mrz1836/repo-file-sync/internal/logging"
)

// defaultBlobConcurrency bounds parallel blob uploads within one commit.
const defaultBlobConcurrency = 5

const blobType = "blob"

// VerifiedCommitPublisher replays local commits through the Git Data API so
// the platform signs them. Each local commit becomes exactly one remote
// commit: blobs are uploaded, a tree is built against the parent tree, and
// a commit object is created on top of the previously published commit.
type VerifiedCommitPublisher struct {
	git             git.Client
	gh              gh.Client
	logger          *logrus.Logger
	logConfig       *logging.LogConfig
	blobConcurrency int
}

// NewVerifiedCommitPublisher creates a publisher with the default blob
// upload concurrency.
func NewVerifiedCommitPublisher(gitClient git.Client, ghClient gh.Client, logger *logrus.Logger, logConfig *logging.LogConfig) *VerifiedCommitPublisher {
	return &VerifiedCommitPublisher{
		git:             gitClient,
		gh:              ghClient,
		logger:          logger,
		logConfig:       logConfig,
		blobConcurrency: defaultBlobConcurrency,
	}
}

// Publish replays every local commit newer than the session's last known
// remote commit, oldest first. Before replaying, the branch ref is created
// idempotently at the pre-replay commit; afterward it is force-updated to
// the final replayed commit.
func (p *VerifiedCommitPublisher) Publish(ctx context.Context, s *Session) error {
	commits, err := p.git.ListCommits(ctx, s.workingDir, s.lastCommitSHA)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		return nil
	}

	repo := s.repo.FullName
	branch := s.pushBranch()

	if !s.defaults.SkipPR {
		err := p.gh.CreateRef(ctx, repo, branch, s.lastCommitSHA)
		if err != nil && !stderrors.Is(err, gh.ErrRefAlreadyExists) {
			return appErrors.WrapWithContext(err, "create branch ref "+branch)
		}
	}

	for _, sha := range commits {
		if err := p.replayCommit(ctx, s, sha); err != nil {
			return err
		}
	}

	p.logEntry(repo).WithFields(logrus.Fields{
		logging.StandardFields.BranchName: branch,
		logging.StandardFields.CommitSHA:  s.lastCommitSHA,
		"commits":                         len(commits),
	}).Info("Replayed commits through object API")

	return p.gh.UpdateRef(ctx, repo, branch, s.lastCommitSHA, true)
}

// replayCommit publishes one local commit: tree-diff against its parent,
// upload the changed blobs, create the tree and commit objects, and advance
// the session's last commit pointer.
func (p *VerifiedCommitPublisher) replayCommit(ctx context.Context, s *Session, sha string) error {
	dir := s.workingDir
	repo := s.repo.FullName

	tree, err := p.git.RevParse(ctx, dir, sha+"^{tree}")
	if err != nil {
		return err
	}
	parentTree, err := p.git.RevParse(ctx, dir, sha+"~1^{tree}")
	if err != nil {
		return err
	}
	message, err := p.git.CommitMessage(ctx, dir, sha)
	if err != nil {
		return err
	}

	raw, err := p.git.DiffTree(ctx, dir, parentTree, tree)
	if err != nil {
		return err
	}
	entries := diff.ParseTreeDiff(raw)

	newTree := tree
	if len(entries) > 0 {
		if err := p.uploadBlobs(ctx, s, entries); err != nil {
			return err
		}

		newTree, err = p.gh.CreateTree(ctx, repo, parentTree, treeUpdate(entries))
		if err != nil {
			return appErrors.WrapWithContext(err, fmt.Sprintf("replay commit %s", sha))
		}
	}

	newSHA, err := p.gh.CreateCommit(ctx, repo, message, newTree, []string{s.lastCommitSHA})
	if err != nil {
		return appErrors.WrapWithContext(err, fmt.Sprintf("replay commit %s", sha))
	}

	if p.logConfig != nil && p.logConfig.Debug.API {
		p.logEntry(repo).WithFields(logrus.Fields{
			logging.StandardFields.CommitSHA: newSHA,
			"local_sha":                      sha,
			"blobs":                          len(entries),
		}).Debug("Commit replayed")
	}

	s.lastCommitSHA = newSHA
	return nil
}

// uploadBlobs pushes the content of every non-deleted blob concurrently.
// Uploads are independent and awaited together; blob ids are content
// addressed, so the remote id matches the local one.
func (p *VerifiedCommitPublisher) uploadBlobs(ctx context.Context, s *Session, entries []diff.TreeDiffEntry) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.blobConcurrency)

	for _, entry := range entries {
		if entry.IsDeletion() {
			continue
		}

		entry := entry
		g.Go(func() error {
			content, err := p.git.CatFile(gctx, s.workingDir, entry.NewBlob)
			if err != nil {
				return err
			}

			encoded := base64.StdEncoding.EncodeToString(content)
			if _, err := p.gh.CreateBlob(gctx, s.repo.FullName, encoded); err != nil {
				return appErrors.WrapWithContext(err, "upload blob for "+entry.Path)
			}
			return nil
		})
	}

	return g.Wait()
}

// treeUpdate converts tree-diff entries into the tree creation payload.
// Deletions keep their previous mode and carry a nil sha, which removes the
// path from the tree.
func treeUpdate(entries []diff.TreeDiffEntry) []gh.TreeEntry {
	update := make([]gh.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDeletion() {
			update = append(update, gh.TreeEntry{
				Path: entry.Path,
				Mode: entry.PreviousMode,
				Type: blobType,
				SHA:  nil,
			})
			continue
		}

		sha := entry.NewBlob
		update = append(update, gh.TreeEntry{
			Path: entry.Path,
			Mode: entry.NewMode,
			Type: blobType,
			SHA:  &sha,
		})
	}
	return update
}

func (p *VerifiedCommitPublisher) logEntry(repo string) *logrus.Entry {
	return logging.WithStandardFields(p.logger, p.logConfig, logging.ComponentNames.Publisher).
		WithField(logging.StandardFields.TargetRepo, repo)
}
