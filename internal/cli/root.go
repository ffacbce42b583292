package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eleven-freight/internal/app"
	"github.com/eleven-freight/internal/config"
	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/provider"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ContainerLoader 构建命令所需的依赖容器
type ContainerLoader func() (*provider.Container, error)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

// RootCmd 构建 receiptctl 根命令
// loader 为空时从 config.yml 加载配置并连接数据库。
func RootCmd(loader ContainerLoader) *cobra.Command {
	if loader == nil {
		loader = loadFromConfig
	}
	root := &cobra.Command{
		Use:           "receiptctl",
		Short:         "11 Freight receipt operations",
		Long:          "receiptctl issues, inspects and verifies 11 Freight receipts against the configured database and storage.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(verifyCmd(loader))
	root.AddCommand(issueCmd(loader))
	root.AddCommand(showCmd(loader))
	root.AddCommand(listCmd(loader))
	root.AddCommand(renderCardCmd(loader))
	root.AddCommand(backendsCmd())
	return root
}

func loadFromConfig() (*provider.Container, error) {
	cfg := config.Load()
	// 命令行输出给人看，日志只保留告警
	cfg.Server.Mode = "release"
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	if err := app.InitDatabase(cfg); err != nil {
		return nil, err
	}
	return provider.NewContainer(cfg)
}

func parseReceiptID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid receipt id %q", raw)
	}
	return uint(id), nil
}
