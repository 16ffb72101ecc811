package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/flarebyte/bennu/internal/buildinfo"
	"github.com/flarebyte/bennu/internal/scan"
)

type pushResult struct {
	commit   string
	upToDate bool
}

func spaceRepoURL(endpoint, space string) string {
	return endpoint + "/spaces/" + space
}

// publish clones (or initializes) the space repo in a temp dir, replaces its
// tracked content with the collected files, and pushes one commit to main.
// Deletions publish: files tracked remotely but absent locally are removed.
func publish(ctx context.Context, opts Options, entries []scan.Entry, synthesizedReadme []byte) (pushResult, error) {
	stageDir, err := os.MkdirTemp("", "bennu-upload-")
	if err != nil {
		return pushResult{}, err
	}
	defer os.RemoveAll(stageDir)

	repoURL := spaceRepoURL(opts.Endpoint, opts.Space)
	auth := &githttp.BasicAuth{Username: "bennu", Password: opts.Token}

	repo, err := cloneOrInit(ctx, stageDir, repoURL, auth)
	if err != nil {
		return pushResult{}, redactToken(err, opts.Token)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return pushResult{}, err
	}
	if err := emptyWorktree(stageDir); err != nil {
		return pushResult{}, err
	}
	if err := copyEntries(opts.Dir, stageDir, entries); err != nil {
		return pushResult{}, err
	}
	if synthesizedReadme != nil {
		if err := os.WriteFile(filepath.Join(stageDir, readmeName), synthesizedReadme, 0o644); err != nil {
			return pushResult{}, err
		}
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return pushResult{}, err
	}
	status, err := wt.Status()
	if err != nil {
		return pushResult{}, err
	}
	if status.IsClean() {
		return pushResult{upToDate: true}, nil
	}

	hash, err := wt.Commit(commitMessage(opts, len(entries)), &git.CommitOptions{
		Author: &object.Signature{Name: "bennu", Email: "bennu@flarebyte.dev", When: time.Now()},
	})
	if err != nil {
		return pushResult{}, err
	}
	headRef, err := repo.Head()
	if err != nil {
		return pushResult{}, err
	}
	spec := gitconfig.RefSpec(fmt.Sprintf("%s:refs/heads/main", headRef.Name()))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{spec},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return pushResult{}, redactToken(err, opts.Token)
	}
	return pushResult{commit: hash.String()}, nil
}

func cloneOrInit(ctx context.Context, dir, url string, auth *githttp.BasicAuth) (*git.Repository, error) {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Auth:         auth,
		SingleBranch: true,
	})
	if err == nil {
		return repo, nil
	}
	if errors.Is(err, transport.ErrRepositoryNotFound) {
		return nil, fmt.Errorf("space repo not found at %s: create the space first", url)
	}
	if !errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return nil, err
	}
	repo, err = git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		return nil, err
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{url}}); err != nil {
		return nil, err
	}
	return repo, nil
}

// emptyWorktree removes everything but the git dir so deletions are staged.
func emptyWorktree(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		if ent.Name() == git.GitDirName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, ent.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyEntries(srcRoot, dstRoot string, entries []scan.Entry) error {
	for _, e := range entries {
		src := filepath.Join(srcRoot, filepath.FromSlash(e.Rel))
		dst := filepath.Join(dstRoot, filepath.FromSlash(e.Rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		b, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, b, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

func commitMessage(opts Options, fileCount int) string {
	if opts.Message != "" {
		return opts.Message
	}
	return fmt.Sprintf("Upload %d files via bennu %s", fileCount, buildinfo.Summary())
}

// redactToken scrubs the access token from transport errors. Tokens travel in
// auth headers, not URLs, but server responses may echo request URLs back.
func redactToken(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "***"))
}
