package cmd

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"signer-core/pkg/errno"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "显示签名应用名称、版本和设置",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		name, err := c.AppName(context.Background())
		if err != nil {
			return err
		}
		version, err := c.Version(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("App:              %s %s\n", name, version)
		fmt.Printf("Blind signing:    %v\n", version.BlindSigning)
		fmt.Printf("Detailed display: %v\n", version.DetailedDisplay)
		return nil
	},
}

var apduCmd = &cobra.Command{
	Use:   "apdu [hex]...",
	Short: "按顺序发送原始 APDU 并打印回复",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		for _, arg := range args {
			frame, err := hexutil.Decode(arg)
			if err != nil {
				return fmt.Errorf("无效的 APDU %q: %w", arg, err)
			}
			payload, sw, err := c.Raw(context.Background(), frame)
			if err != nil {
				return err
			}
			var swBytes [2]byte
			binary.BigEndian.PutUint16(swBytes[:], sw)
			fmt.Printf("=> %s\n<= %s %x (%s)\n", arg, hexutil.Encode(payload), swBytes, errno.Lookup(sw).Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(apduCmd)
}
