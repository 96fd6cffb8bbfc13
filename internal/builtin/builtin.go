// Package builtin registers the built-in analyzers in their canonical
// order. Registration order is fixed so that ties during traversal
// resolve the same way on every run.
package builtin

import (
	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/internal/expr"
	"github.com/tokenlens/tokenlens/internal/formats/base32"
	"github.com/tokenlens/tokenlens/internal/formats/base58"
	"github.com/tokenlens/tokenlens/internal/formats/base64"
	"github.com/tokenlens/tokenlens/internal/formats/cborfmt"
	"github.com/tokenlens/tokenlens/internal/formats/color"
	"github.com/tokenlens/tokenlens/internal/formats/compress"
	"github.com/tokenlens/tokenlens/internal/formats/digest"
	"github.com/tokenlens/tokenlens/internal/formats/epoch"
	"github.com/tokenlens/tokenlens/internal/formats/exprfmt"
	"github.com/tokenlens/tokenlens/internal/formats/hex"
	"github.com/tokenlens/tokenlens/internal/formats/integer"
	"github.com/tokenlens/tokenlens/internal/formats/ipaddr"
	"github.com/tokenlens/tokenlens/internal/formats/isotime"
	"github.com/tokenlens/tokenlens/internal/formats/json"
	"github.com/tokenlens/tokenlens/internal/formats/speed"
	"github.com/tokenlens/tokenlens/internal/formats/text"
	"github.com/tokenlens/tokenlens/internal/formats/urlenc"
	"github.com/tokenlens/tokenlens/internal/formats/uuidfmt"
	"github.com/tokenlens/tokenlens/internal/formats/xml"
	"github.com/tokenlens/tokenlens/internal/formats/yaml"
	"github.com/tokenlens/tokenlens/internal/rates"
)

// Register adds every built-in analyzer to the registry. store
// supplies currency rates to the expression analyzer and may be nil,
// in which case expressions evaluate without currency support.
func Register(r *format.Registry, store *rates.Store) error {
	analyzers := []format.Analyzer{
		hex.New(),
		base64.New(),
		base64.NewURL(),
		base32.New(),
		base58.New(),
		integer.NewBigEndian(),
		integer.NewLittleEndian(),
		integer.NewDecimal(),
		epoch.NewSeconds(),
		epoch.NewMillis(),
		isotime.New(),
		uuidfmt.New(),
		ipaddr.NewV4(),
		ipaddr.NewV6(),
		color.New(),
		json.New(),
		yaml.New(),
		xml.New(),
		cborfmt.New(),
		urlenc.New(),
		compress.NewGzip(),
		compress.NewZstd(),
		compress.NewXz(),
		digest.NewSHA256(),
		digest.NewBLAKE3(),
		text.New(),
		speed.New(),
		exprfmt.New(exprContext(store)),
	}
	for _, a := range analyzers {
		if err := r.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// exprContext binds the expression analyzer to the live rate table.
// Each evaluation takes its own snapshot, so a refresh mid-request
// cannot mix old and new rates.
func exprContext(store *rates.Store) exprfmt.ContextFunc {
	if store == nil {
		return nil
	}
	return func() expr.Context {
		snap := store.Snapshot()
		ctx := expr.DefaultContext()
		ctx.Rates = snap.Rates
		ctx.TargetCurrency = snap.Target
		return ctx
	}
}
