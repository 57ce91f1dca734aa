package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pledgewatch/pledgewatch/internal/config"
	"github.com/pledgewatch/pledgewatch/internal/repository"
	"github.com/pledgewatch/pledgewatch/internal/service"
)

func CompanyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage monitored companies",
		Long:  "Register and list companies tracked by the contradiction pipeline",
	}

	cmd.AddCommand(CompanyCreateCmd())
	cmd.AddCommand(CompanyListCmd())

	return cmd
}

func CompanyCreateCmd() *cobra.Command {
	var (
		description string
		industry    string
		website     string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a company for monitoring",
		Long:  "Register a company so documents and news can be attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runCompanyCreate(args[0], description, industry, website, outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&description, "description", "", "Short description of the company")
	cmd.Flags().StringVar(&industry, "industry", "", "Industry the company operates in")
	cmd.Flags().StringVar(&website, "website", "", "Company website URL")

	return cmd
}

func runCompanyCreate(name, description, industry, website, outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	companyRepo := repository.NewCompanyRepository(pool)
	companySvc := service.NewCompanyService(companyRepo)

	company, err := companySvc.Create(ctx, service.CreateCompanyInput{
		Name:        name,
		Description: description,
		Industry:    industry,
		Website:     website,
	})
	if err != nil {
		return fmt.Errorf("failed to register company: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         company.ID,
			"name":       company.Name,
			"industry":   company.Industry,
			"created_at": company.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Company registered: %s (%s)\n", company.Name, company.ID)
	}

	return nil
}

func CompanyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List monitored companies",
		Long:  "List all companies registered for monitoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runCompanyList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runCompanyList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	companyRepo := repository.NewCompanyRepository(pool)

	companies, err := companyRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(companies))
		for i, company := range companies {
			data[i] = map[string]interface{}{
				"id":         company.ID,
				"name":       company.Name,
				"industry":   company.Industry,
				"created_at": company.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(companies) == 0 {
			fmt.Println("No companies registered")
			return nil
		}
		fmt.Println("Companies:")
		for _, company := range companies {
			fmt.Printf("  %s: %s (created: %s)\n", company.ID, company.Name, company.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
