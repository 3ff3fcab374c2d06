package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"billing/internal/logger"
	"billing/internal/store"
	"billing/pkg/models"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients and their projects",
}

var clientAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a client",
	Example: `  billing client add --name "PT Maju Jaya" --email finance@maju.co.id --phone 0812345678`,
	Args:    cobra.NoArgs,
	RunE:    runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List clients with their projects, newest first",
	Example: `  # Clients acquired in October
  billing client list --from 2026-10-01 --to 2026-10-31`,
	Args: cobra.NoArgs,
	RunE: runClientList,
}

var clientUpdateCmd = &cobra.Command{
	Use:     "update <client-id>",
	Short:   "Update name, email and phone of a client",
	Example: `  billing client update 6f1c... --name "PT Maju Jaya Abadi"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runClientUpdate,
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <client-id>",
	Short: "Delete a client and its projects; invoices are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientDelete,
}

var projectAddCmd = &cobra.Command{
	Use:     "project <client-id>",
	Short:   "Add a project to a client",
	Example: `  billing client project 6f1c... --name "Company profile website"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectAdd,
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientAddCmd, clientListCmd, clientUpdateCmd, clientDeleteCmd, projectAddCmd)

	for _, c := range []*cobra.Command{clientAddCmd, clientUpdateCmd} {
		c.Flags().String("name", "", "Client name [REQUIRED]")
		c.Flags().String("email", "", "Contact email")
		c.Flags().String("phone", "", "Contact phone")
		_ = c.MarkFlagRequired("name")
	}
	clientListCmd.Flags().String("from", "", "Only clients created on or after this day (YYYY-MM-DD)")
	clientListCmd.Flags().String("to", "", "Only clients created on or before this day (YYYY-MM-DD)")
	clientListCmd.Flags().Bool("json", false, "Output as JSON")
	projectAddCmd.Flags().String("name", "", "Project name [REQUIRED]")
	projectAddCmd.Flags().String("description", "", "Project description")
	_ = projectAddCmd.MarkFlagRequired("name")
}

// withStore opens the configured store for the duration of fn.
func withStore(component string, fn func(ctx context.Context, st *store.Store) error) error {
	log := logger.WithComponent(component)

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := createCommandContext(30*time.Second, log)
	defer cancel()

	return fn(ctx, st)
}

func clientFromFlags(cmd *cobra.Command) models.Client {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")
	return models.Client{Name: name, Email: email, Phone: phone}
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	return withStore("client", func(ctx context.Context, st *store.Store) error {
		c, err := st.CreateClient(ctx, clientFromFlags(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Created client %s (%s)\n", c.Name, c.ID)
		return nil
	})
}

func runClientList(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return withStore("client", func(ctx context.Context, st *store.Store) error {
		var (
			clients []models.Client
			err     error
		)
		if from != "" || to != "" {
			window, werr := resolveWindow(from, to, time.Now(), cfg.Location())
			if werr != nil {
				return werr
			}
			clients, err = st.ListClientsCreatedBetween(ctx, window.Start, window.End)
		} else {
			clients, err = st.ListClients(ctx)
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSONOutput(clients, "", *logger.WithContext(ctx))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tPROJECTS\tCREATED")
		for _, c := range clients {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				c.ID, c.Name, c.Email, c.Phone, len(c.Projects), c.CreatedAt.Format("2006-01-02"))
		}
		return tw.Flush()
	})
}

func runClientUpdate(cmd *cobra.Command, args []string) error {
	return withStore("client", func(ctx context.Context, st *store.Store) error {
		c := clientFromFlags(cmd)
		c.ID = args[0]
		if err := st.UpdateClient(ctx, c); err != nil {
			return err
		}
		fmt.Printf("Updated client %s\n", c.ID)
		return nil
	})
}

func runClientDelete(cmd *cobra.Command, args []string) error {
	return withStore("client", func(ctx context.Context, st *store.Store) error {
		if err := st.DeleteClient(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted client %s\n", args[0])
		return nil
	})
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")

	return withStore("client", func(ctx context.Context, st *store.Store) error {
		p, err := st.AddProject(ctx, models.Project{ClientID: args[0], Name: name, Description: description})
		if err != nil {
			return err
		}
		fmt.Printf("Added project %s (%s)\n", p.Name, p.ID)
		return nil
	})
}
