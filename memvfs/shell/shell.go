// Package shell is the command layer on top of the tree: it tracks the
// current directory, turns command lines into tree and query calls, and
// renders results as text.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	internal "github.com/ZanzyTHEbar/memvfs/memvfs"
	"github.com/ZanzyTHEbar/memvfs/memvfs/config"
	"github.com/ZanzyTHEbar/memvfs/memvfs/ports"
	"github.com/ZanzyTHEbar/memvfs/memvfs/query"
	"github.com/ZanzyTHEbar/memvfs/memvfs/trees"

	"github.com/rs/zerolog"
)

// ErrExit is returned by Do for the exit command.
var ErrExit = errors.New("exit requested")

var (
	errInvalidArguments = errors.New("invalid arguments")
	errNoDirName        = errors.New("no dir name")
	errNotADirectory    = errors.New("final node is not a directory")
	errUnknownCommand   = errors.New("unknown command, use command help")
	errBadMf            = errors.New("bad mf command format")
	errBadFind          = errors.New("invalid find command format")
	errBadGrep          = errors.New("invalid grep command format")
)

var mfPattern = regexp.MustCompile(`^mf +([^ ]+) +(.+)$`)

// maxLineSize bounds one input line; mf content arrives on a single line.
const maxLineSize = 16 << 20

const menu = `help - Prints this menu
md [directory name] - Creates a directory
cd [directory name] - Changes the current directory
cd .. - Changes the current directory to parent directory
mf [file name] [text] - Creates a file and writing text into it
ls <dir> - Displays list of files and subdirectories in directory
ls -R <dir> - Recursive. Displays files in specified directory and all subdirectories
find [directory name] -iname pattern - find files below [directory name] matching a wildcard expression
grep [file name] [pattern] - search for matching wildcard expression in [file name], output all lines matching pattern.
grep -r [path] [pattern] - same as grep, for every file below [path]; lines are prefixed with the file path.
cat [file name] - prints the content of [file name].
pwd - print current working directory.
complete [prefix] - lists existing paths starting with [prefix].
exit - Quits the program
`

type Shell struct {
	ns     trees.Namespace
	engine *query.Engine
	cwd    string
	prompt string
	logger zerolog.Logger
}

type Option func(*Shell)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// WithPrompt sets the prompt format; a %s verb is replaced by the cwd.
func WithPrompt(prompt string) Option {
	return func(s *Shell) {
		s.prompt = prompt
	}
}

func New(ns trees.Namespace, engine *query.Engine, opts ...Option) *Shell {
	s := &Shell{
		ns:     ns,
		engine: engine,
		cwd:    trees.Separator,
		prompt: internal.DefaultPrompt,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig wires a fresh tree, query engine and shell from cfg.
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) (*Shell, *trees.Tree, error) {
	grammar, err := trees.CompileNameGrammar(cfg.Names.Pattern)
	if err != nil {
		return nil, nil, err
	}

	tree := trees.NewTree(
		trees.WithLogger(logger),
		trees.WithNameGrammar(grammar),
	)

	engine, err := query.NewEngine(tree,
		query.WithLogger(logger),
		query.WithGlobCacheSize(cfg.Query.GlobCacheSize),
		query.WithGrepWorkers(cfg.Query.GrepWorkers),
	)
	if err != nil {
		return nil, nil, err
	}

	return New(tree, engine, WithLogger(logger), WithPrompt(cfg.Shell.Prompt)), tree, nil
}

// Cwd returns the current working directory.
func (s *Shell) Cwd() string {
	return s.cwd
}

// Prompt renders the prompt for the current directory.
func (s *Shell) Prompt() string {
	if strings.Contains(s.prompt, "%s") {
		return fmt.Sprintf(s.prompt, s.cwd)
	}
	return s.prompt
}

// Do runs one command line and returns its printable result. Arguments are
// separated by spaces only; other whitespace is part of an argument.
func (s *Shell) Do(command string) (string, error) {
	args := splitArgs(command)
	if len(args) == 0 {
		return "", nil
	}

	s.logger.Debug().Str("command", args[0]).Int("args", len(args)-1).Msg("dispatching command")

	switch args[0] {
	case "cat":
		return s.cat(args)
	case "cd":
		return s.cd(args)
	case "complete":
		return s.complete(args)
	case "exit":
		return "", ErrExit
	case "find":
		return s.find(args)
	case "grep":
		return s.grep(args)
	case "help":
		return menu, nil
	case "ls":
		return s.ls(args)
	case "md":
		return s.md(args)
	case "mf":
		return s.mf(command)
	case "pwd":
		return s.pwd(args)
	default:
		return "", errUnknownCommand
	}
}

// Run reads commands from in until EOF, exit or ctx cancellation.
func (s *Shell) Run(ctx context.Context, in io.Reader, out ports.Interactor) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		out.Prompt(s.Prompt())
		if !scanner.Scan() {
			return scanner.Err()
		}

		result, err := s.Do(scanner.Text())
		switch {
		case errors.Is(err, ErrExit):
			out.Output("Bye.")
			return nil
		case errors.Is(err, errUnknownCommand):
			out.Warning(err.Error())
		case err != nil:
			out.Error("", err)
		case result != "":
			out.Output(result)
		}
	}
}

func splitArgs(command string) []string {
	var args []string
	for _, a := range strings.Split(command, " ") {
		if a != "" {
			args = append(args, a)
		}
	}
	return args
}

// absolute resolves arg against the cwd unless it is already absolute.
func (s *Shell) absolute(arg string) string {
	if trees.IsAbs(arg) {
		return arg
	}
	return trees.Join(s.cwd, arg)
}

func (s *Shell) cat(args []string) (string, error) {
	if len(args) != 2 {
		return "", errInvalidArguments
	}
	node, err := s.ns.Resolve(s.absolute(args[1]))
	if err != nil {
		return "", err
	}
	return node.Content()
}

func (s *Shell) cd(args []string) (string, error) {
	if len(args) != 2 {
		return "", errInvalidArguments
	}

	var target string
	if args[1] == ".." {
		target = trees.Dirname(s.cwd)
	} else {
		target = trees.Normalize(s.absolute(args[1]))
	}

	node, err := s.ns.Resolve(target)
	if err != nil {
		return "", err
	}
	if !node.IsDirectory() {
		return "", errNotADirectory
	}
	s.cwd = target
	return "", nil
}

func (s *Shell) complete(args []string) (string, error) {
	prefix := s.cwd
	if len(args) > 1 {
		prefix = s.absolute(args[1])
	}
	return strings.Join(s.ns.Complete(prefix), "\n"), nil
}

func (s *Shell) find(args []string) (string, error) {
	if len(args) < 4 || args[2] != "-iname" {
		return "", errBadFind
	}
	found, err := s.engine.Find(s.absolute(args[1]), args[3])
	if err != nil {
		return "", err
	}
	return strings.Join(found, "\n"), nil
}

func (s *Shell) grep(args []string) (string, error) {
	recursive := len(args) > 1 && args[1] == "-r"
	if recursive {
		args = append(args[:1:1], args[2:]...)
	}
	if len(args) < 3 {
		return "", errBadGrep
	}

	path, pattern := s.absolute(args[1]), args[2]
	if !recursive {
		lines, err := s.engine.Grep(path, pattern)
		if err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	}

	matches, err := s.engine.GrepRecursive(path, pattern)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, m.String())
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Shell) ls(args []string) (string, error) {
	recursive := false
	rest := args[:0:0]
	for _, a := range args[1:] {
		if a == "-R" {
			recursive = true
			continue
		}
		rest = append(rest, a)
	}

	dir := s.cwd
	if len(rest) > 0 {
		dir = s.absolute(rest[0])
	}

	var (
		lines []string
		err   error
	)
	if recursive {
		lines, err = s.engine.ListRecursive(dir)
	} else {
		lines, err = s.engine.List(dir)
	}
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Shell) md(args []string) (string, error) {
	if len(args) < 2 {
		return "", errNoDirName
	}
	if args[1] == trees.Separator {
		return "", trees.ErrRootCreationForbidden
	}
	if _, err := s.ns.MkdirAll(s.absolute(args[1])); err != nil {
		return "", err
	}
	return "", nil
}

// mf takes the raw line so the text keeps its inner spacing. A literal \n in
// the text becomes a line break.
func (s *Shell) mf(command string) (string, error) {
	m := mfPattern.FindStringSubmatch(strings.Trim(command, " "))
	if m == nil {
		return "", errBadMf
	}
	content := strings.ReplaceAll(m[2], `\n`, "\n")

	node, err := s.ns.Insert(s.absolute(m[1]), trees.File)
	if err != nil {
		return "", err
	}
	if err := node.SetContent(content); err != nil {
		return "", err
	}
	return "", nil
}

func (s *Shell) pwd(args []string) (string, error) {
	if len(args) > 1 {
		return trees.Normalize(s.absolute(args[1])), nil
	}
	return s.cwd, nil
}
