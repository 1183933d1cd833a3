package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"readme_updater/internal/apperr"
	"readme_updater/internal/logger"
)

// SquashMessage - сообщение единственного коммита после схлопывания истории.
const SquashMessage = "🧹 History cleanup - fresh start"

// Options описывает рабочую копию и параметры публикации.
type Options struct {
	Dir         string
	Branch      string
	Remote      string
	Username    string
	Token       string
	AuthorName  string
	AuthorEmail string
	Push        bool
	MaxCommits  int
}

// Repo выполняет операции через git CLI в каталоге Dir.
type Repo struct {
	opts Options
	log  *logger.Entry
}

func New(opts Options) *Repo {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return &Repo{opts: opts, log: logger.Component("git")}
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.opts.Dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", &apperr.CommitError{Op: args[0], Output: r.redact(strings.TrimSpace(stderr.String())), Err: err}
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// redact прячет токен, если он попал в вывод git.
func (r *Repo) redact(s string) string {
	if r.opts.Token == "" {
		return s
	}
	return strings.ReplaceAll(s, r.opts.Token, "***")
}

func (r *Repo) identity() []string {
	return []string{
		"-c", "user.name=" + r.opts.AuthorName,
		"-c", "user.email=" + r.opts.AuthorEmail,
		"-c", "commit.gpgsign=false",
	}
}

func (r *Repo) commitArgs(message string, extra ...string) []string {
	args := append(r.identity(), "commit", "-m", message)
	return append(args, extra...)
}

// IsRepo сообщает, находится ли Dir внутри рабочей копии git.
func (r *Repo) IsRepo(ctx context.Context) bool {
	out, err := r.git(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

func (r *Repo) hasCommits(ctx context.Context) bool {
	_, err := r.git(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// FileHistory возвращает до n последних закоммиченных версий файла path (от новых к старым).
func (r *Repo) FileHistory(ctx context.Context, path string, n int) ([]string, error) {
	if n <= 0 || !r.hasCommits(ctx) {
		return nil, nil
	}
	rel := filepath.ToSlash(path)
	out, err := r.git(ctx, "log", "-n", strconv.Itoa(n), "--format=%H", "--", rel)
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, hash := range strings.Fields(out) {
		content, err := r.git(ctx, "show", hash+":"+rel)
		if err != nil {
			// файл мог быть удален в этом коммите
			continue
		}
		versions = append(versions, content)
	}
	return versions, nil
}

// RecentSubjects возвращает темы n последних коммитов.
func (r *Repo) RecentSubjects(ctx context.Context, n int) ([]string, error) {
	if n <= 0 || !r.hasCommits(ctx) {
		return nil, nil
	}
	out, err := r.git(ctx, "log", "-n", strconv.Itoa(n), "--format=%s")
	if err != nil || out == "" {
		return nil, err
	}
	return strings.Split(out, "\n"), nil
}

// CommitCount возвращает число коммитов в текущей ветке.
func (r *Repo) CommitCount(ctx context.Context) (int, error) {
	if !r.hasCommits(ctx) {
		return 0, nil
	}
	out, err := r.git(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(out))
}

// Commit фиксирует изменения в paths (пути относительно Dir) и возвращает хеш коммита.
// Если изменений нет, возвращает пустую строку без ошибки.
// После коммита при необходимости схлопывает историю и отправляет ветку на сервер.
func (r *Repo) Commit(ctx context.Context, message string, paths ...string) (string, error) {
	if err := r.ensureBranch(ctx); err != nil {
		return "", err
	}

	rel := make([]string, len(paths))
	for i, p := range paths {
		rel[i] = filepath.ToSlash(p)
	}
	if _, err := r.git(ctx, append([]string{"add", "--"}, rel...)...); err != nil {
		return "", err
	}
	changed, err := r.git(ctx, append([]string{"diff", "--cached", "--name-only", "--"}, rel...)...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(changed) == "" {
		r.log.Info("Nothing to commit")
		return "", nil
	}

	if _, err := r.git(ctx, r.commitArgs(message, append([]string{"--"}, rel...)...)...); err != nil {
		return "", err
	}

	force := false
	if r.opts.MaxCommits > 0 {
		count, err := r.CommitCount(ctx)
		if err != nil {
			return "", err
		}
		if count >= r.opts.MaxCommits {
			r.log.WithField("commits", count).Info("Commit limit reached, squashing history")
			if err := r.squash(ctx); err != nil {
				return "", err
			}
			force = true
		}
	}

	hash, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	r.log.WithField("hash", hash).Info("Committed")

	if r.opts.Push {
		if err := r.push(ctx, force); err != nil {
			return hash, err
		}
	}
	return hash, nil
}

func (r *Repo) ensureBranch(ctx context.Context) error {
	current, err := r.git(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return err
	}
	if current == r.opts.Branch {
		return nil
	}
	if !r.hasCommits(ctx) {
		_, err := r.git(ctx, "symbolic-ref", "HEAD", "refs/heads/"+r.opts.Branch)
		return err
	}
	if _, err := r.git(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+r.opts.Branch); err == nil {
		_, err := r.git(ctx, "checkout", r.opts.Branch)
		return err
	}
	r.log.WithField("branch", r.opts.Branch).Info("Creating branch")
	_, err = r.git(ctx, "checkout", "-b", r.opts.Branch)
	return err
}

// squash заменяет историю ветки одним коммитом с текущим деревом.
// Коммит без родителей создается через commit-tree, рабочая копия и индекс не трогаются.
func (r *Repo) squash(ctx context.Context) error {
	head, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return err
	}
	root, err := r.git(ctx, append(r.identity(), "commit-tree", "HEAD^{tree}", "-m", SquashMessage)...)
	if err != nil {
		return err
	}
	_, err = r.git(ctx, "update-ref", "-m", "squash history", "refs/heads/"+r.opts.Branch, strings.TrimSpace(root), head)
	return err
}

func (r *Repo) push(ctx context.Context, force bool) error {
	target, err := r.pushURL()
	if err != nil {
		return &apperr.CommitError{Op: "push", Err: err}
	}
	args := []string{"push"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, target, "HEAD:refs/heads/"+r.opts.Branch)
	if _, err := r.git(ctx, args...); err != nil {
		return err
	}
	r.log.WithField("force", force).Info("Pushed")
	return nil
}

// pushURL добавляет учетные данные к https-адресу удаленного репозитория.
func (r *Repo) pushURL() (string, error) {
	if r.opts.Remote == "" {
		return "origin", nil
	}
	u, err := url.Parse(r.opts.Remote)
	if err != nil {
		return "", err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return r.opts.Remote, nil
	}
	if r.opts.Token == "" {
		return r.opts.Remote, nil
	}
	if r.opts.Username == "" {
		return "", errors.New("git token set without username")
	}
	u.User = url.UserPassword(r.opts.Username, r.opts.Token)
	return u.String(), nil
}
