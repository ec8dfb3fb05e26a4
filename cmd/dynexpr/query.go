package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raywall/dynexpr/dyndb"
	"github.com/raywall/dynexpr/keysource"
	"github.com/raywall/dynexpr/pkg/config"
	"github.com/raywall/dynexpr/pkg/config/injector"
	"github.com/raywall/dynexpr/pkg/observability"
	"github.com/raywall/dynexpr/predicate/celpred"
	"github.com/raywall/dynexpr/schemafile"
	"github.com/raywall/dynexpr/transpile"
	"github.com/spf13/cobra"
)

// newClient é substituído nos testes.
var newClient = func(ctx context.Context, region, endpoint string) (dyndb.Client, error) {
	return dyndb.NewClient(ctx, region, endpoint)
}

type queryFlags struct {
	Config     string
	Schema     string
	TypeName   string
	Index      string
	Keys       []string
	Cursor     string
	Limit      int32
	Take       int
	Descending bool
	Consistent bool
}

type queryOutput struct {
	Items  []any  `json:"items"`
	Cursor string `json:"cursor,omitempty"`
}

func (o *queryOutput) renderText(w io.Writer) {
	for _, item := range o.Items {
		fmt.Fprintf(w, "%v\n", item)
	}
	fmt.Fprintf(w, "items: %d\n", len(o.Items))
	if o.Cursor != "" {
		fmt.Fprintf(w, "cursor: %s\n", o.Cursor)
	}
}

func newQueryCommand(rootOpts *rootOptions) *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query [cel]...",
		Short: "Executa uma consulta no DynamoDB",
		Long: `Executa uma consulta usando a configuração YAML (tabela, região, chaves do
cursor e métricas) e o schema do tipo. Cada predicado CEL vira um filtro.

As chaves usam o nome do atributo: --key pk=v1 para igualdade e
--key sk^=prefixo, sk>=v, sk<=v, sk>v, sk<v para a chave de ordenação.`,
		Example: `  dynexpr query --config dynexpr.yaml --type User --key tenant_id=t1 'record.Age > 18'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runQuery(cmd.Context(), rootOpts, flags, args)
			if err != nil {
				return err
			}
			return render(cmd, rootOpts, out)
		},
	}

	cmd.Flags().StringVar(&flags.Config, "config", "dynexpr.yaml", "arquivo de configuração")
	cmd.Flags().StringVar(&flags.Schema, "schema", "", "schema do tipo (padrão: o da configuração)")
	cmd.Flags().StringVar(&flags.TypeName, "type", "", "nome do tipo de registro")
	cmd.Flags().StringVar(&flags.Index, "index", "", "índice secundário")
	cmd.Flags().StringArrayVar(&flags.Keys, "key", nil, "componente de chave (pode repetir)")
	cmd.Flags().StringVar(&flags.Cursor, "cursor", "", "cursor devolvido pela consulta anterior")
	cmd.Flags().Int32Var(&flags.Limit, "limit", 0, "itens por página")
	cmd.Flags().IntVar(&flags.Take, "take", 0, "máximo de itens no total")
	cmd.Flags().BoolVar(&flags.Descending, "desc", false, "ordem decrescente da chave de ordenação")
	cmd.Flags().BoolVar(&flags.Consistent, "consistent", false, "leitura fortemente consistente")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func runQuery(ctx context.Context, rootOpts *rootOptions, flags *queryFlags, sources []string) (*queryOutput, error) {
	loader := &keysource.Loader{}
	cfg, err := config.Load(ctx, flags.Config, injector.New(loader))
	if err != nil {
		return nil, err
	}

	location := flags.Schema
	if location == "" {
		location = cfg.Schema
	}
	if location == "" {
		return nil, fmt.Errorf("nenhum schema: use --schema ou defina schema na configuração")
	}
	s, err := (&schemafile.Loader{Region: cfg.Table.Region}).Load(ctx, location)
	if err != nil {
		return nil, err
	}
	l, err := resolveType(s, flags.TypeName, "read")
	if err != nil {
		return nil, err
	}

	keys, err := parseKeys(flags.Keys)
	if err != nil {
		return nil, err
	}

	provider, err := observability.SetupMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	if c, ok := provider.(io.Closer); ok {
		defer c.Close()
	}

	client, err := newClient(ctx, cfg.Table.Region, cfg.Table.Endpoint)
	if err != nil {
		return nil, err
	}
	svc, err := dyndb.NewService(client, dyndb.Config{
		TableName:  cfg.Table.Name,
		EncryptKey: cfg.Cursor.EncryptKey,
		DecryptKey: cfg.Cursor.DecryptKey,
	}, l.mapper, nil, dyndb.WithLogger(rootOpts.log), dyndb.WithMetrics(provider))
	if err != nil {
		return nil, err
	}

	idx := dyndb.PrimaryKey(keys...)
	if flags.Index != "" {
		idx = dyndb.SecondaryIndex(flags.Index, keys...)
	}
	qb := svc.Query(l.recordType, idx).
		ExclusiveStartKey(flags.Cursor).
		Limit(flags.Limit).
		Take(flags.Take).
		ScanIndexForward(!flags.Descending)

	parser, err := celpred.New()
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		lambda, err := parser.Parse(l.recordType, src)
		if err != nil {
			return nil, err
		}
		qb.WhereLambda(lambda)
	}

	var res *dyndb.ListResult
	if flags.Consistent {
		res, err = qb.ListConsistent(ctx)
	} else {
		res, err = qb.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &queryOutput{Items: res.Items, Cursor: res.Cursor}, nil
}

// keyOperators em ordem: os de dois caracteres antes dos de um.
var keyOperators = []struct {
	token string
	op    transpile.QueryOperator
}{
	{"^=", transpile.BeginsWith},
	{">=", transpile.GreaterOrEqual},
	{"<=", transpile.LessOrEqual},
	{"=", transpile.Equals},
	{">", transpile.Greater},
	{"<", transpile.Less},
}

// parseKeys converte "nome<op>valor" em componentes de chave.
func parseKeys(raw []string) ([]transpile.PartitionKey, error) {
	keys := make([]transpile.PartitionKey, 0, len(raw))
	for _, r := range raw {
		key, err := parseKey(r)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parseKey(raw string) (transpile.PartitionKey, error) {
	pos := -1
	var match string
	var op transpile.QueryOperator
	for _, ko := range keyOperators {
		i := strings.Index(raw, ko.token)
		if i < 0 {
			continue
		}
		// o operador mais à esquerda vence; em empate, o mais longo
		if pos < 0 || i < pos {
			pos, match, op = i, ko.token, ko.op
		}
	}
	if pos <= 0 {
		return transpile.PartitionKey{}, fmt.Errorf("chave inválida %q: use nome=valor", raw)
	}
	return transpile.KeyWith(raw[:pos], op, raw[pos+len(match):]), nil
}
