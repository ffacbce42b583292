package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/repository"
	"github.com/eleven-freight/internal/service"

	"github.com/spf13/cobra"
)

func verifyCmd(loader ContainerLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [qr-input]",
		Short: "Verify a scanned QR payload, artifact path or receipt number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := loader()
			if err != nil {
				return err
			}
			defer container.Close()

			result, err := container.ReceiptService.Verify(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("verify failed: %w", err)
			}
			out := cmd.OutOrStdout()
			if !result.Valid {
				fmt.Fprintf(out, "%s %s\n", failMark("✗ INVALID"), result.Reason)
				return errors.New("receipt not verified")
			}
			fmt.Fprintf(out, "%s %s\n", okMark("✓ VALID"), result.Reason)
			fmt.Fprintf(out, "  Number: %s\n", result.Receipt.ReceiptNumber)
			fmt.Fprintf(out, "  Type:   %s (%s)\n", result.Receipt.Type, constants.ReceiptTypeLabel(result.Receipt.Type))
			fmt.Fprintf(out, "  Issued: %s\n", result.Receipt.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func issueCmd(loader ContainerLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a receipt",
		RunE: func(cmd *cobra.Command, args []string) error {
			receiptType, _ := cmd.Flags().GetString("type")
			linkedID, _ := cmd.Flags().GetUint("linked-id")
			number, _ := cmd.Flags().GetString("number")
			if receiptType == "" {
				return fmt.Errorf("--type flag is required")
			}

			container, err := loader()
			if err != nil {
				return err
			}
			defer container.Close()

			input := service.CreateReceiptInput{Type: receiptType, ReceiptNumber: number}
			if cmd.Flags().Changed("linked-id") {
				input.LinkedID = &linkedID
			}
			ctx := context.Background()
			receipt, err := container.ReceiptService.Create(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to issue receipt: %w", err)
			}
			detail, err := container.ReceiptService.GetByID(ctx, receipt.ID)
			if err != nil {
				return fmt.Errorf("receipt issued but reload failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Issued receipt %s\n", okMark("✓"), detail.ReceiptNumber)
			printDetail(cmd, detail)
			return nil
		},
	}
	cmd.Flags().String("type", "", "Receipt type ("+joinTypes()+")")
	cmd.Flags().Uint("linked-id", 0, "Linked shipment, payment or settlement id")
	cmd.Flags().String("number", "", "Custom receipt number")
	return cmd
}

func showCmd(loader ContainerLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show [receipt-id]",
		Short: "Show receipt details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReceiptID(args[0])
			if err != nil {
				return err
			}
			container, err := loader()
			if err != nil {
				return err
			}
			defer container.Close()

			detail, err := container.ReceiptService.GetByID(context.Background(), id)
			if err != nil {
				return fmt.Errorf("receipt %d: %w", id, err)
			}
			printDetail(cmd, detail)
			return nil
		},
	}
}

func listCmd(loader ContainerLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issued receipts",
		RunE: func(cmd *cobra.Command, args []string) error {
			receiptType, _ := cmd.Flags().GetString("type")
			search, _ := cmd.Flags().GetString("search")
			limit, _ := cmd.Flags().GetInt("limit")

			container, err := loader()
			if err != nil {
				return err
			}
			defer container.Close()

			items, total, err := container.ReceiptService.List(context.Background(), repository.ReceiptListFilter{
				Page:     1,
				PageSize: limit,
				Type:     receiptType,
				Search:   search,
			})
			if err != nil {
				return fmt.Errorf("failed to list receipts: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No receipts found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNUMBER\tTYPE\tLINKED\tISSUED")
			for _, item := range items {
				linked := "-"
				if item.LinkedID != nil {
					linked = fmt.Sprintf("%d", *item.LinkedID)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					item.ID,
					item.ReceiptNumber,
					item.Type,
					linked,
					item.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			w.Flush()
			fmt.Fprintf(out, "%d of %d receipts\n", len(items), total)
			return nil
		},
	}
	cmd.Flags().String("type", "", "Filter by receipt type")
	cmd.Flags().String("search", "", "Filter by receipt number")
	cmd.Flags().Int("limit", 20, "Maximum rows to show")
	return cmd
}

func renderCardCmd(loader ContainerLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "render-card [receipt-id]",
		Short: "Re-render and store the receipt card image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReceiptID(args[0])
			if err != nil {
				return err
			}
			container, err := loader()
			if err != nil {
				return err
			}
			defer container.Close()

			detail, err := container.ReceiptService.RenderCard(context.Background(), id, service.AuditActor{})
			if err != nil {
				if errors.Is(err, service.ErrCardDisabled) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s card rendering is disabled (receipt.render_card)\n", warnMark("!"))
				}
				return fmt.Errorf("render card for receipt %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Rendered card for %s\n", okMark("✓"), detail.ReceiptNumber)
			fmt.Fprintf(cmd.OutOrStdout(), "  Image: %s\n", detail.ReceiptImageURL)
			return nil
		},
	}
}

func printDetail(cmd *cobra.Command, detail *service.ReceiptDetail) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Receipt: %d\n", detail.ID)
	fmt.Fprintf(out, "  Number: %s\n", detail.ReceiptNumber)
	fmt.Fprintf(out, "  Type:   %s (%s)\n", detail.Type, detail.TypeLabel)
	if detail.LinkedID != nil {
		fmt.Fprintf(out, "  Linked: %d\n", *detail.LinkedID)
	}
	fmt.Fprintf(out, "  Issued: %s\n", detail.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  QR:     %s\n", detail.QRCodeURL)
	if detail.ReceiptImageURL != "" {
		fmt.Fprintf(out, "  Card:   %s\n", detail.ReceiptImageURL)
	}
}

func joinTypes() string {
	return strings.Join(constants.ReceiptTypes(), "|")
}
