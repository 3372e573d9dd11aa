// Parses flags and configures logging for the adder CLI.
//
// The tool accepts the following flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// selected subcommand runs.
//
// The resolve command owns the caller-side responsibilities of a
// resolution session: ordering outputs by their required steps, expanding
// the variant matrix, filtering skipped outputs, and driving each variant
// copy's finalize.
package cli
