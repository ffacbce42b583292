package main

import (
	"flag"
	"os"
	"syscall"

	"github.com/eleven-freight/internal/app"
	"github.com/eleven-freight/internal/config"
	"github.com/eleven-freight/internal/logger"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
)

func main() {
	printStartupBanner()

	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := app.InitDatabase(cfg); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
		if !cfg.Authz.Enabled {
			stdLog.Printf("警告: 后台角色鉴权已关闭，请确认上游网关已做访问控制")
		}
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	frame := color.New(color.FgHiMagenta)
	title := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	frame.Println("╔══════════════════════════════════════════════════════════╗")
	title.Println("║              11 Freight Receipt API 启动中               ║")
	frame.Println("╚══════════════════════════════════════════════════════════╝")
	dim.Println("receipts · qr verify · receipt cards · warehouse intake")
	dim.Println("--------------------------------------------------------------")
}
