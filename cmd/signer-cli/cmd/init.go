package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"signer-core/pkg/bip39"
	"signer-core/pkg/config"
	"signer-core/pkg/keystore"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "初始化签名设备 (生成助记词并加密保存)",
	Long:  `生成新的 BIP-39 助记词，并使用用户输入的密码进行加密，保存为 Keystore 文件。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile := config.Global.Signer.KeystorePath
		if _, err := os.Stat(outputFile); err == nil {
			return fmt.Errorf("文件 %s 已存在。请先删除或指定其他文件名", outputFile)
		}
		words, _ := cmd.Flags().GetInt("words")
		restore, _ := cmd.Flags().GetBool("restore")

		service := bip39.NewMnemonicService()
		var mnemonic string
		if restore {
			fmt.Print("输入助记词: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("读取助记词失败: %w", err)
			}
			mnemonic = strings.Join(strings.Fields(line), " ")
			if !service.ValidateMnemonic(mnemonic) {
				return bip39.ErrInvalidMnemonic
			}
		}

		fmt.Println("请设置一个强密码来保护您的助记词。")
		password, err := readNewPassword()
		if err != nil {
			return err
		}

		if !restore {
			// 12 词 = 128 bits, 24 词 = 256 bits
			mnemonic, err = service.GenerateMnemonic(words / 3 * 32)
			if err != nil {
				return err
			}
		}

		fmt.Println("正在加密保存...")
		encryptedKey, err := keystore.EncryptMnemonic(mnemonic, password)
		if err != nil {
			return fmt.Errorf("加密失败: %w", err)
		}
		if err := encryptedKey.SaveToFile(outputFile); err != nil {
			return fmt.Errorf("保存文件失败: %w", err)
		}

		fmt.Printf("\n✅ 签名设备已初始化！\n")
		fmt.Printf("文件位置: %s\n", outputFile)
		fmt.Printf("您的 ID: %s\n", encryptedKey.Id)
		fmt.Println("\n⚠️  警告: 请务必记住您的密码！如果丢失密码，您将无法恢复钱包。")

		if restore {
			return nil
		}
		fmt.Print("\n是否需要现在显示助记词以便备份? (y/N): ")
		input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))
		if input == "y" || input == "yes" {
			fmt.Println("\n---------------------------------------------------")
			fmt.Println("助记词 (请抄写在纸上并安全保管):")
			fmt.Println(mnemonic)
			fmt.Println("---------------------------------------------------")
		}
		return nil
	},
}

func readNewPassword() (string, error) {
	fmt.Print("输入密码: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	fmt.Print("确认密码: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("两次输入的密码不一致")
	}
	if len(first) < 6 {
		return "", fmt.Errorf("密码长度至少需要 6 位")
	}
	return string(first), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Int("words", 24, "助记词单词数 (12, 15, 18, 21, 24)")
	initCmd.Flags().Bool("restore", false, "从已有助记词恢复")
}
