package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

var (
	uploadReq  types.UploadRequest
	listAll    bool
	editReq    types.EditRequest
	editFile   string
	deleteHard bool

	uploadCmd = &cobra.Command{
		Use:   "upload <file>",
		Short: "upload an image and create its record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			att, err := readAttachment(args[0])
			if err != nil {
				return err
			}

			return printReply(cmd, svc.Upload(cmd.Context(), att, uploadReq), false)
		},
	}

	listCmd = &cobra.Command{
		Use:     "list",
		Short:   "list image records",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			return printReply(cmd, svc.List(cmd.Context(), listAll), false)
		},
	}

	searchCmd = &cobra.Command{
		Use:   "search <keyword>",
		Short: "search image records by file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			q := types.ListQuery{ShowAll: listAll, Keyword: args[0]}

			return printReply(cmd, svc.Search(cmd.Context(), q), false)
		},
	}

	showCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "show one image record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			r := svc.Detail(cmd.Context(), args[0])
			svc.Selection().Close()

			return printReply(cmd, r, false)
		},
	}

	updateCmd = &cobra.Command{
		Use:   "update <id>",
		Short: "edit the name, type or description of an image record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			att, err := readAttachment(editFile)
			if err != nil {
				return err
			}

			if opened := svc.OpenEdit(cmd.Context(), args[0]); opened.Err != nil {
				return printReply(cmd, opened, false)
			}
			defer svc.Selection().Close()

			return printReply(cmd, svc.SaveEdit(cmd.Context(), editReq, att), false)
		},
	}

	deleteCmd = &cobra.Command{
		Use:     "delete <id>",
		Short:   "mark an image record as deleted, or delete it permanently with --hard",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context())
			if err != nil {
				return err
			}

			return printReply(cmd, svc.Delete(cmd.Context(), args[0], deleteHard), false)
		},
	}
)

// registerRecordCommands 注册记录工作流命令.
func registerRecordCommands() {
	uploadCmd.Flags().StringVar(&uploadReq.Description, "description", "", "file description")
	uploadCmd.Flags().StringVar(&uploadReq.Classifier, "classifier", "", "explicit classifier such as img2dicom")

	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include deleted records")
	searchCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include deleted records")

	updateCmd.Flags().StringVar(&editReq.FileName, "name", "", "new file name")
	updateCmd.Flags().StringVar(&editReq.FileType, "type", "", "new file type")
	updateCmd.Flags().StringVar(&editReq.Description, "description", "", "new description")
	updateCmd.Flags().StringVar(&editFile, "file", "", "replace the content with this file")
	_ = updateCmd.MarkFlagRequired("name")

	deleteCmd.Flags().BoolVar(&deleteHard, "hard", false, "the record is already marked deleted, remove it permanently")

	rootCmd.AddCommand(uploadCmd, listCmd, searchCmd, showCmd, updateCmd, deleteCmd)
}
