package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/setstore/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/setstore/internal/core/domain"
)

var getDefault bool

var registerCmd = &cobra.Command{
	Use:   "register KEY TYPE DEFAULT [INITIAL]",
	Short: "Register a new setting",
	Long: `Register a setting with a declared type and a default value.

Values are read as JSON; bare words are accepted for string types.
The current value starts at INITIAL when given, otherwise at DEFAULT.
Run "setstore types" to see the available types.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runRegister,
}

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var setCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change the value of a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

var resetCmd = &cobra.Command{
	Use:   "reset KEY",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

var unregisterCmd = &cobra.Command{
	Use:   "unregister KEY",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnregister,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the types a setting can be declared with",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func init() {
	getCmd.Flags().BoolVarP(&getDefault, "default", "d", false, "print the default instead of the current value")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(unregisterCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(typesCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		typ, err := resolveType(s.types, args[1])
		if err != nil {
			return err
		}

		def, err := parseValue(args[2], typ)
		if err != nil {
			return err
		}
		initial := def
		if len(args) == 4 {
			if initial, err = parseValue(args[3], typ); err != nil {
				return err
			}
		}

		if err := s.service.Register(args[0], typ, def, initial); err != nil {
			return err
		}
		if err := s.persist(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Registered %s (%s)\n", args[0], domain.TypeName(typ))
		return nil
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		typ, err := s.service.TypeOf(args[0])
		if err != nil {
			return err
		}

		read := s.service.Get
		if getDefault {
			read = s.service.Default
		}
		value, err := read(args[0], typ)
		if err != nil {
			return err
		}
		cmd.Println(formatValue(value))
		return nil
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		typ, err := s.service.TypeOf(args[0])
		if err != nil {
			return err
		}
		value, err := parseValue(args[1], typ)
		if err != nil {
			return err
		}

		if err := s.service.Set(args[0], value, typ); err != nil {
			return err
		}
		return s.persist(cmd.Context())
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		if err := s.service.Reset(args[0]); err != nil {
			return err
		}
		return s.persist(cmd.Context())
	})
}

func runUnregister(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		if err := s.service.Unregister(args[0]); err != nil {
			return err
		}
		if err := s.persist(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Unregistered %s\n", args[0])
		return nil
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		settings := s.service.List()
		if len(settings) == 0 {
			cmd.Println("No settings registered.")
			return nil
		}

		rows := make([][]string, 0, len(settings))
		for _, setting := range settings {
			rows = append(rows, []string{
				setting.Key,
				setting.TypeName(),
				formatValue(setting.Value),
				formatValue(setting.Default),
			})
		}

		cmd.Println(tableStyles(cmd).Table([]string{"KEY", "TYPE", "VALUE", "DEFAULT"}, rows, 1, 3))

		rev, ok, err := s.currentRevision(cmd.Context())
		if err != nil {
			return err
		}
		if ok {
			cmd.Printf("Revision: %s\n", rev)
		}
		return nil
	})
}

func runTypes(cmd *cobra.Command, _ []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		for _, name := range s.types.Names() {
			cmd.Println(name)
		}
		return nil
	})
}

// tableStyles returns styles when output goes to a terminal and nil otherwise.
func tableStyles(cmd *cobra.Command) *styles.Styles {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return styles.DefaultStyles()
}
