package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/raywall/dynexpr/attrval"
	"github.com/raywall/dynexpr/cursor"
	"github.com/raywall/dynexpr/keysource"
	"github.com/spf13/cobra"
)

const (
	envEncryptKey = "DYNEXPR_CURSOR_ENCRYPT_KEY"
	envDecryptKey = "DYNEXPR_CURSOR_DECRYPT_KEY"
)

type cursorOutput struct {
	Token string          `json:"token,omitempty"`
	Key   json.RawMessage `json:"key,omitempty"`
}

func (o *cursorOutput) renderText(w io.Writer) {
	if o.Token != "" {
		fmt.Fprintln(w, o.Token)
	}
	if len(o.Key) > 0 {
		fmt.Fprintln(w, string(o.Key))
	}
}

func newCursorCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Cifra e decifra cursores de paginação",
		Long: `Cifra e decifra cursores de paginação (LastEvaluatedKey).

A chave AES em base64 vem de --key, de DYNEXPR_CURSOR_ENCRYPT_KEY ou
DYNEXPR_CURSOR_DECRYPT_KEY (inclusive via .env). Referências env://,
ssm:///caminho e secretsmanager://id#campo também são aceitas.`,
	}

	cmd.AddCommand(newCursorEncodeCommand(rootOpts))
	cmd.AddCommand(newCursorDecodeCommand(rootOpts))
	cmd.AddCommand(newCursorKeygenCommand())

	return cmd
}

func newCursorEncodeCommand(rootOpts *rootOptions) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:     "encode <dynamodb-json>",
		Short:   "Cifra uma chave (DynamoDB JSON) num cursor",
		Example: `  dynexpr cursor encode --key "$KEY" '{"record_id":{"S":"u1"}}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := resolveKey(cmd.Context(), key, envEncryptKey)
			if err != nil {
				return err
			}
			codec, err := cursor.New(secret, "")
			if err != nil {
				return err
			}
			item, err := attrval.UnmarshalJSON([]byte(args[0]))
			if err != nil {
				return err
			}
			token, err := codec.Encode(item)
			if err != nil {
				return err
			}
			return render(cmd, rootOpts, &cursorOutput{Token: token})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "chave AES em base64 ou referência (env://, ssm://, secretsmanager://)")

	return cmd
}

func newCursorDecodeCommand(rootOpts *rootOptions) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Decifra um cursor e imprime a chave em DynamoDB JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := resolveKey(cmd.Context(), key, envDecryptKey)
			if err != nil {
				return err
			}
			codec, err := cursor.New("", secret)
			if err != nil {
				return err
			}
			item, err := codec.Decode(args[0])
			if err != nil {
				return err
			}
			data, err := attrval.MarshalJSON(item)
			if err != nil {
				return err
			}
			return render(cmd, rootOpts, &cursorOutput{Key: data})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "chave AES em base64 ou referência (env://, ssm://, secretsmanager://)")

	return cmd
}

func newCursorKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Gera uma chave AES-256 aleatória em base64",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := cursor.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

// resolveKey usa a flag ou, na falta dela, a variável de ambiente.
func resolveKey(ctx context.Context, flag, envName string) (string, error) {
	ref := flag
	if ref == "" {
		ref = os.Getenv(envName)
	}
	if ref == "" {
		return "", fmt.Errorf("chave ausente: use --key ou defina %s", envName)
	}
	return keysource.Load(ctx, ref)
}
