package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"unrecurse/internal/rewriter"
	"unrecurse/internal/rewriter/generator"
	"unrecurse/internal/rewriter/transformer"
	"unrecurse/internal/vcs"
	"unrecurse/recerr"
)

var (
	rewriteInput     string
	rewriteOutput    string
	rewriteInPlace   bool
	rewriteAll       bool
	rewriteForce     bool
	rewriteDirective string
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [files...]",
	Short: "Rewrite tail-recursive functions in Go source files",
	Long: `Rewrite tail-recursive functions in Go source files.

Only functions carrying the //unrecurse:rewrite directive are touched unless
--all is given. In-place rewriting refuses to overwrite files with uncommitted
git changes unless --force is given.

Examples:
  unrecurse rewrite main.go                   # Output to stdout
  unrecurse rewrite -i main.go -o out.go      # Output to file
  unrecurse rewrite -w main.go util.go        # Rewrite in place
  unrecurse rewrite --all -w main.go          # Rewrite every tail-recursive function`,
	Args: cobra.ArbitraryArgs,
	Run:  runRewrite,
}

func init() {
	addRewriteFlags(rewriteCmd)
}

func addRewriteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rewriteInput, "input", "i", "", "Path to the input .go file")
	cmd.Flags().StringVarP(&rewriteOutput, "output", "o", "", "Path to the output .go file")
	cmd.Flags().BoolVarP(&rewriteInPlace, "write", "w", false, "Rewrite files in place")
	cmd.Flags().BoolVarP(&rewriteAll, "all", "a", false, "Rewrite every self-recursive function, marked or not")
	cmd.Flags().BoolVarP(&rewriteForce, "force", "f", env.Bool("UNRECURSE_FORCE"), "Overwrite files with uncommitted changes")
	cmd.Flags().StringVar(&rewriteDirective, "directive", env.Str("UNRECURSE_DIRECTIVE", rewriter.DefaultDirective), "Comment directive that marks functions for rewriting")
}

func runRewrite(cmd *cobra.Command, args []string) {
	inputs := args
	if rewriteInput != "" {
		inputs = append([]string{rewriteInput}, args...)
	}

	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		fmt.Fprintln(os.Stderr, "Usage: unrecurse rewrite [files...] or unrecurse -i file.go")
		os.Exit(1)
	}

	if rewriteOutput != "" && (len(inputs) > 1 || rewriteInPlace) {
		fmt.Fprintln(os.Stderr, "Error: -o takes exactly one input file and cannot be combined with -w")
		os.Exit(1)
	}

	rw := rewriter.NewGoRewriter(
		rewriter.NewGoSourceParser(),
		transformer.NewFuncTransformer(),
		generator.NewGoCodeGenerator(),
		rewriter.WithDirective(rewriteDirective),
		rewriter.WithAll(rewriteAll),
	)

	var errs []error
	for _, path := range inputs {
		if err := rewriteFile(rw, path); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 1 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errs[0])
		os.Exit(1)
	}
	if len(errs) > 1 {
		multi := &recerr.MultiError{Errors: errs}
		fmt.Fprintf(os.Stderr, "Error: %v\n", multi)
		os.Exit(1)
	}
}

func rewriteFile(rw rewriter.Rewriter, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, err := rw.Rewrite(path, string(content))
	if err != nil {
		return err
	}

	if rewriteInPlace {
		if !rewriteForce {
			if err := guardInPlace(path); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Rewrote %s\n", path)
		return nil
	}

	if rewriteOutput != "" {
		if err := os.WriteFile(rewriteOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rewriteOutput, err)
		}
		fmt.Printf("Rewrote %s to %s\n", path, rewriteOutput)
		return nil
	}

	fmt.Print(out)
	return nil
}

// guardInPlace refuses in-place rewrites that would clobber the only copy of
// a change. Files outside any git repository are always refused without
// --force, since there is nothing to recover them from.
func guardInPlace(path string) error {
	clean, err := vcs.Clean(path)
	if err != nil {
		if errors.Is(err, vcs.ErrNotRepository) {
			return fmt.Errorf("%s is not under version control, use --force to rewrite in place anyway", path)
		}
		return err
	}
	if !clean {
		return fmt.Errorf("%s has uncommitted changes, commit them or use --force", path)
	}
	return nil
}
