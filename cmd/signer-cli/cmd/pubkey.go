package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"signer-core/pkg/address"
	"signer-core/pkg/config"
)

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "显示派生路径的公钥和 Conflux 地址",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := derivationPath(cmd)
		if err != nil {
			return err
		}
		display, _ := cmd.Flags().GetBool("display")
		withChainCode, _ := cmd.Flags().GetBool("chain-code")

		c, err := openClient(cmd)
		if err != nil {
			return err
		}
		pub, chainCode, err := c.GetPublicKey(context.Background(), path, display, withChainCode)
		if err != nil {
			return err
		}

		gen := address.NewCFXGenerator(config.Global.Approval.NetworkID)
		addr, err := gen.PubKeyToAddress(pub)
		if err != nil {
			return err
		}
		hexAddr, _ := gen.PubKeyToHex(pub)

		fmt.Printf("Public Key: %s\n", hexutil.Encode(pub))
		if withChainCode {
			fmt.Printf("Chain Code: %s\n", hexutil.Encode(chainCode))
		}
		fmt.Printf("Address:    %s\n", addr)
		fmt.Printf("Hex:        %s\n", hexAddr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pubkeyCmd)
	pubkeyCmd.Flags().Bool("display", false, "在设备上确认地址")
	pubkeyCmd.Flags().Bool("chain-code", false, "同时返回链码")
}
