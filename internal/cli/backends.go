package cli

import (
	"fmt"

	"github.com/eleven-freight/internal/qrcode"

	"github.com/spf13/cobra"
)

var backendProbe = []byte(`{"id":0,"receipt_number":"PROBE"}`)

func backendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "Probe QR encoding backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawLevel, _ := cmd.Flags().GetString("recovery-level")
			level, err := qrcode.ParseRecoveryLevel(rawLevel)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			available := 0
			for _, backend := range []qrcode.Backend{
				qrcode.NewVectorBackend(level),
				qrcode.NewRasterBackend(level),
			} {
				artifact, err := backend.Encode(backendProbe, 0)
				if err != nil || artifact == nil || len(artifact.Data) == 0 {
					fmt.Fprintf(out, "%-8s %s %v\n", backend.Name(), failMark("FAILED"), err)
					continue
				}
				available++
				fmt.Fprintf(out, "%-8s %s %s (%d bytes)\n", backend.Name(), okMark("OK"), artifact.ContentType, len(artifact.Data))
			}
			if available == 0 {
				return qrcode.ErrEncodingUnavailable
			}
			return nil
		},
	}
	cmd.Flags().String("recovery-level", "medium", "QR error correction level (low|medium|high|highest)")
	return cmd
}
