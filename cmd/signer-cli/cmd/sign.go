package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"signer-core/pkg/bip32"
	"signer-core/pkg/client"
	"signer-core/pkg/wallet/types"
)

var signTxCmd = &cobra.Command{
	Use:   "sign-tx",
	Short: "签名交易 (Offline Signing)",
	Long:  `读取未签名的交易 JSON 文件，由签名设备确认并签名，输出已签名的交易 (Raw Tx)。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile, _ := cmd.Flags().GetString("input")
		outputFile, _ := cmd.Flags().GetString("output")

		// 1. 读取未签名交易
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("读取输入文件失败: %w", err)
		}
		var unsignedTx types.UnsignedTransaction
		if err := json.Unmarshal(data, &unsignedTx); err != nil {
			return fmt.Errorf("解析交易文件失败: %w", err)
		}

		pathStr := unsignedTx.DerivationPath
		if cmd.Flags().Changed("path") || pathStr == "" {
			pathStr, _ = cmd.Flags().GetString("path")
		}
		path, err := bip32.ParsePath(pathStr)
		if err != nil {
			return err
		}

		// 2. 编码
		raw, err := client.EncodeTransaction(unsignedTx)
		if err != nil {
			return err
		}
		fmt.Printf("交易 (%d 字节): %s\n", len(raw), hexutil.Encode(raw))

		// 3. 设备签名
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		vrs, err := c.SignTransaction(context.Background(), path, raw)
		if err != nil {
			return fmt.Errorf("签名失败: %w", err)
		}
		signedTx, err := client.AssembleSigned(unsignedTx, vrs)
		if err != nil {
			return err
		}

		// 4. 输出结果
		outputData, _ := json.MarshalIndent(signedTx, "", "  ")
		if err := os.WriteFile(outputFile, outputData, 0644); err != nil {
			return fmt.Errorf("保存结果失败: %w", err)
		}
		fmt.Printf("\n✅ 签名成功!\n")
		fmt.Printf("TxHash: %s\n", signedTx.TxHash)
		fmt.Printf("已保存到: %s\n", outputFile)
		return nil
	},
}

var signMsgCmd = &cobra.Command{
	Use:   "sign-msg [message]",
	Short: "签名消息 (personal sign)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := derivationPath(cmd)
		if err != nil {
			return err
		}
		msg := []byte(args[0])
		if isHex, _ := cmd.Flags().GetBool("hex"); isHex {
			if msg, err = hexutil.Decode(args[0]); err != nil {
				return err
			}
		}

		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		vrs, err := c.SignMessage(context.Background(), path, msg)
		if err != nil {
			return fmt.Errorf("签名失败: %w", err)
		}
		v, r, s, err := client.UnpackSignature(vrs)
		if err != nil {
			return err
		}
		fmt.Printf("v: %d\nr: %s\ns: %s\n", v, hexutil.Encode(r[:]), hexutil.Encode(s[:]))
		fmt.Printf("signature: %s\n", hexutil.Encode(vrs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signTxCmd)
	signTxCmd.Flags().StringP("input", "i", "unsigned.json", "未签名的交易文件路径")
	signTxCmd.Flags().StringP("output", "o", "signed.json", "签名后的输出文件路径")

	rootCmd.AddCommand(signMsgCmd)
	signMsgCmd.Flags().Bool("hex", false, "消息为 0x 开头的十六进制")
}
