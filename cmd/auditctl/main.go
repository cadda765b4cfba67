// auditctl runs the audit sampling criteria from the command line, without
// the HTTP server. Each subcommand mirrors one criterion endpoint: it reads
// the extracts from disk and writes the result workbook next to them.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"auditserver/criteria"
	"auditserver/export"
	"auditserver/tabular"
)

var outputDir string

func main() {
	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Run audit sampling criteria against extract files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&outputDir, "output", "o", ".", "directory for the result workbook")

	root.AddCommand(
		newHdvTC1Cmd(),
		newHdvTC2Cmd(),
		newHdvTC3Cmd(),
		newDvkhTC13Cmd(),
		newDvkhTC45Cmd(),
		newTkhqCmd(),
		newMuc09Cmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadSource(path string) (tabular.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tabular.Source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return tabular.Source{Name: filepath.Base(path), Data: data}, nil
}

func loadSources(paths []string) ([]tabular.Source, error) {
	srcs := make([]tabular.Source, 0, len(paths))
	for _, p := range paths {
		src, err := loadSource(p)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

func writeResult(cmd *cobra.Command, result *criteria.Result) error {
	data, err := export.WriteWorkbook(result.Sheets)
	if err != nil {
		return err
	}
	path := filepath.Join(outputDir, result.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", w)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
	return nil
}

func newHdvTC1Cmd() *cobra.Command {
	var detail, ftp []string
	var paid, sol string
	cmd := &cobra.Command{
		Use:   "hdv-tc1",
		Short: "Flag term deposits with rate deviations",
		RunE: func(cmd *cobra.Command, args []string) error {
			detailSrcs, err := loadSources(detail)
			if err != nil {
				return err
			}
			ftpSrcs, err := loadSources(ftp)
			if err != nil {
				return err
			}
			paidSrc, err := loadSource(paid)
			if err != nil {
				return err
			}
			result, err := criteria.NewRunner().DepositRates(criteria.DepositRatesInput{
				Detail: detailSrcs, FTP: ftpSrcs, PaidRate: paidSrc, SOL: sol,
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	cmd.Flags().StringSliceVar(&detail, "detail", nil, "term-deposit detail extracts")
	cmd.Flags().StringSliceVar(&ftp, "ftp", nil, "FTP rate extracts")
	cmd.Flags().StringVar(&paid, "paid", "", "actually-paid rate listing")
	cmd.Flags().StringVar(&sol, "sol", "", "4-digit branch code")
	cmd.MarkFlagRequired("detail")
	cmd.MarkFlagRequired("ftp")
	cmd.MarkFlagRequired("paid")
	cmd.MarkFlagRequired("sol")
	return cmd
}

func newHdvTC2Cmd() *cobra.Command {
	var term, demand []string
	var sol string
	cmd := &cobra.Command{
		Use:   "hdv-tc2",
		Short: "Rank the branch's top depositors",
		RunE: func(cmd *cobra.Command, args []string) error {
			termSrcs, err := loadSources(term)
			if err != nil {
				return err
			}
			demandSrcs, err := loadSources(demand)
			if err != nil {
				return err
			}
			result, err := criteria.NewRunner().DepositRanking(criteria.DepositRankingInput{
				Term: termSrcs, Demand: demandSrcs, SOL: sol,
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	cmd.Flags().StringSliceVar(&term, "term", nil, "term-deposit detail extracts")
	cmd.Flags().StringSliceVar(&demand, "demand", nil, "demand-deposit detail extracts")
	cmd.Flags().StringVar(&sol, "sol", "", "4-digit branch code")
	cmd.MarkFlagRequired("term")
	cmd.MarkFlagRequired("demand")
	cmd.MarkFlagRequired("sol")
	return cmd
}

func newHdvTC3Cmd() *cobra.Command {
	var transactions, sol string
	cmd := &cobra.Command{
		Use:   "hdv-tc3",
		Short: "Flag early and large deposit withdrawals",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := loadSource(transactions)
			if err != nil {
				return err
			}
			result, err := criteria.NewRunner().DepositWithdrawals(criteria.DepositWithdrawalsInput{
				Transactions: src, SOL: sol,
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	cmd.Flags().StringVar(&transactions, "transactions", "", "withdrawal transaction extract")
	cmd.Flags().StringVar(&sol, "sol", "", "4-digit branch code")
	cmd.MarkFlagRequired("transactions")
	cmd.MarkFlagRequired("sol")
	return cmd
}

func newDvkhTC13Cmd() *cobra.Command {
	var term, demand []string
	var grants, sms, service string
	cmd := &cobra.Command{
		Use:   "dvkh-tc1-3",
		Short: "Flag suspicious account authorizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			termSrcs, err := loadSources(term)
			if err != nil {
				return err
			}
			demandSrcs, err := loadSources(demand)
			if err != nil {
				return err
			}
			grantsSrc, err := loadSource(grants)
			if err != nil {
				return err
			}
			in := criteria.AuthorizationInput{
				Term: termSrcs, Demand: demandSrcs, Grants: grantsSrc,
			}
			if sms != "" {
				if in.SMS, err = loadSource(sms); err != nil {
					return err
				}
			}
			if service != "" {
				if in.Service, err = loadSource(service); err != nil {
					return err
				}
			}
			result, err := criteria.NewRunner().Authorization(in)
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	cmd.Flags().StringSliceVar(&term, "term", nil, "term-deposit detail extracts")
	cmd.Flags().StringSliceVar(&demand, "demand", nil, "demand-deposit detail extracts")
	cmd.Flags().StringVar(&grants, "grants", "", "authorization register extract")
	cmd.Flags().StringVar(&sms, "sms", "", "SMS registration listing (optional)")
	cmd.Flags().StringVar(&service, "service", "", "online-banking registration listing (optional)")
	cmd.MarkFlagRequired("term")
	cmd.MarkFlagRequired("demand")
	cmd.MarkFlagRequired("grants")
	return cmd
}

func newDvkhTC45Cmd() *cobra.Command {
	var accounts []string
	var chargeLevels, staff, resigned, cardMapping, sol string
	cmd := &cobra.Command{
		Use:   "dvkh-tc4-5",
		Short: "Flag staff-benefit accounts and short-lived cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			accountSrcs, err := loadSources(accounts)
			if err != nil {
				return err
			}
			chargeSrc, err := loadSource(chargeLevels)
			if err != nil {
				return err
			}
			staffSrc, err := loadSource(staff)
			if err != nil {
				return err
			}
			resignedSrc, err := loadSource(resigned)
			if err != nil {
				return err
			}
			cardSrc, err := loadSource(cardMapping)
			if err != nil {
				return err
			}
			result, err := criteria.NewRunner().StaffAccounts(criteria.StaffAccountsInput{
				Accounts: accountSrcs, ChargeLevels: chargeSrc, Staff: staffSrc,
				Resigned: resignedSrc, CardMapping: cardSrc, SOL: sol,
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	cmd.Flags().StringSliceVar(&accounts, "accounts", nil, "demand-deposit detail extracts")
	cmd.Flags().StringVar(&chargeLevels, "charge-levels", "", "fee charge-level listing")
	cmd.Flags().StringVar(&staff, "staff", "", "current staff list")
	cmd.Flags().StringVar(&resigned, "resigned", "", "resigned staff list")
	cmd.Flags().StringVar(&cardMapping, "card-mapping", "", "card mapping extract")
	cmd.Flags().StringVar(&sol, "sol", "", "4-digit branch code")
	cmd.MarkFlagRequired("accounts")
	cmd.MarkFlagRequired("charge-levels")
	cmd.MarkFlagRequired("staff")
	cmd.MarkFlagRequired("resigned")
	cmd.MarkFlagRequired("card-mapping")
	cmd.MarkFlagRequired("sol")
	return cmd
}

func newTkhqCmd() *cobra.Command {
	var declarations, auditDate string
	cmd := &cobra.Command{
		Use:   "tkhq",
		Short: "Flag overdue customs declarations",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := loadSource(declarations)
			if err != nil {
				return err
			}
			day, err := time.ParseInLocation("2006-01-02", auditDate, time.UTC)
			if err != nil {
				return fmt.Errorf("audit-date must be in YYYY-MM-DD format: %w", err)
			}
			result, err := criteria.NewRunner().Customs(criteria.CustomsInput{
				Declarations: src, AuditDate: day,
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	cmd.Flags().StringVar(&declarations, "declarations", "", "customs declaration extract")
	cmd.Flags().StringVar(&auditDate, "audit-date", "", "audit reference date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("declarations")
	cmd.MarkFlagRequired("audit-date")
	return cmd
}

func newMuc09Cmd() *cobra.Command {
	var transactions string
	cmd := &cobra.Command{
		Use:   "muc09",
		Short: "Aggregate outward remittances by purpose and sender",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := loadSource(transactions)
			if err != nil {
				return err
			}
			result, err := criteria.NewRunner().Remittance(criteria.RemittanceInput{
				Transactions: src,
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result)
		},
	}
	cmd.Flags().StringVar(&transactions, "transactions", "", "remittance transaction extract")
	cmd.MarkFlagRequired("transactions")
	return cmd
}
