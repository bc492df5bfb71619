package cmd

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"signer-core/internal/device"
	"signer-core/pkg/bip32"
	"signer-core/pkg/client"
	"signer-core/pkg/config"
	"signer-core/pkg/logger"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "signer-cli",
	Short: "Conflux 交易签名命令行工具",
	Long: `驱动 Conflux 签名设备的命令行工具。
默认在进程内运行签名核心 (使用本地 Keystore)，也可以通过 --emulator 连接 signer-emulator。`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init()
		logger.Init(config.Global.App.Env)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("emulator", "", "signer-emulator 地址, 例如 http://localhost:9999")
	rootCmd.PersistentFlags().StringP("keystore", "k", "", "Keystore 文件路径 (默认读取 signer.keystore_path)")
	rootCmd.PersistentFlags().StringP("path", "p", bip32.DefaultPath, "BIP-32 派生路径")

	_ = viper.BindPFlag("signer.keystore_path", rootCmd.PersistentFlags().Lookup("keystore"))
}

// openClient 返回连接到模拟器或进程内设备的客户端
func openClient(cmd *cobra.Command) (*client.Client, error) {
	if url, _ := cmd.Flags().GetString("emulator"); url != "" {
		return client.New(client.NewHTTPExchanger(url)), nil
	}

	cfg := config.Global
	if cfg.Signer.Mnemonic == "" && cfg.Signer.Password == "" {
		fmt.Printf("请输入 Keystore (%s) 密码: ", cfg.Signer.KeystorePath)
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return nil, fmt.Errorf("读取密码失败: %w", err)
		}
		cfg.Signer.Password = string(password)
	}

	dev, err := device.New(cfg, os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	return client.New(client.DeviceExchanger{Device: dev}), nil
}

func derivationPath(cmd *cobra.Command) ([]uint32, error) {
	s, _ := cmd.Flags().GetString("path")
	return client.ParsePath(s)
}
