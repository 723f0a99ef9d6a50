package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/storeclient/pkg/internal/service"
	"github.com/yeisme/storeclient/pkg/internal/types"
)

// errWorkflowFailed 工作流已经向用户展示过提示，命令只需要以非零状态退出.
var errWorkflowFailed = errors.New("workflow failed")

// printReply 将提示写到 stderr，数据以 JSON 写到 stdout. 失败的探测仍然输出响应.
func printReply[T any](cmd *cobra.Command, r service.Reply[T], showDataOnError bool) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", r.Notice.Level, r.Notice.Message)

	if r.Err == nil || showDataOnError {
		if err := writeJSON(cmd.OutOrStdout(), r.Data); err != nil {
			return err
		}
	}

	if r.Err != nil {
		return errWorkflowFailed
	}

	return nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

// readAttachment 读取本地文件，媒体类型按内容探测. path 为空时返回 nil.
func readAttachment(path string) (*types.Attachment, error) {
	if path == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return types.NewAttachment(filepath.Base(path), "", content), nil
}
