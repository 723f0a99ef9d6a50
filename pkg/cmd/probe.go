package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

var (
	probeReq       types.ProbeRequest
	probeOperation string
	probeFile      string
	tableReq       types.TableAddRequest

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "send an arbitrary envelope to the store and print the raw response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			att, err := readAttachment(probeFile)
			if err != nil {
				return err
			}

			probeReq.Operation = types.Operation(probeOperation)

			return printReply(cmd, svc.Probe(cmd.Context(), probeReq, att), true)
		},
	}

	probeTableCmd = &cobra.Command{
		Use:   "table",
		Short: "write raw JSON data into a named table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			return printReply(cmd, svc.TableAdd(cmd.Context(), tableReq), false)
		},
	}
)

// registerProbeCommands 注册 API 探测命令.
func registerProbeCommands() {
	f := probeCmd.Flags()
	f.StringVar(&probeReq.FileType, "file-type", "", "file_type of the envelope")
	f.StringVar(&probeOperation, "operation", "", "add, check, update or isdel")
	f.StringVar(&probeReq.Data, "data", "", "JSON object sent as data")
	f.StringVar(&probeFile, "file", "", "attach a local file")
	f.BoolVar(&probeReq.Audit, "audit", false, "audit flag for check")
	f.StringVar(&probeReq.IsDelField, "isdel-field", "", "soft delete field for isdel")
	f.StringVar(&probeReq.IsDelValue, "isdel-value", "", "soft delete value for isdel")

	probeTableCmd.Flags().StringVar(&tableReq.Table, "table", "", "table name")
	probeTableCmd.Flags().StringVar(&tableReq.Data, "data", "", "JSON object to write")

	probeCmd.AddCommand(probeTableCmd)
	rootCmd.AddCommand(probeCmd)
}
