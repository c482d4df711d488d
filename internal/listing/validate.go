package listing

import (
	"strconv"
	"strings"

	"github.com/hitoshi/autobazar/internal/catalog"
	"github.com/hitoshi/autobazar/internal/model"
)

// Number は数値入力フィールド。
// Presentが偽なら未入力、Validが偽なら整数として解釈できなかったことを表す。
type Number struct {
	Value   int
	Present bool
	Valid   bool
}

// Int は入力済みの有効な数値を返す。
func Int(v int) Number {
	return Number{Value: v, Present: true, Valid: true}
}

// ParseNumber は文字列を数値入力として解釈する。
// 桁区切りのカンマと空白は取り除く（"1,000,000" は 1000000）。空文字は未入力とする。
func ParseNumber(raw string) Number {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return Number{}
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return Number{Present: true}
	}
	return Int(v)
}

func (n Number) nonNegative() bool {
	return n.Present && n.Valid && n.Value >= 0
}

// AddListingInput は掲載追加の入力。
type AddListingInput struct {
	Brand   string
	Model   string
	Year    Number
	Price   Number
	Mileage Number
}

// Rules は掲載内容の検証ルール。
type Rules struct {
	Catalog      *catalog.Catalog
	YearMin      int
	YearMax      int
	PriceMileage bool // 価格・走行距離を扱うかどうか
}

// Validate は入力をブランド、モデル、年式、価格、走行距離の順に検証する。
// 最初に見つかった違反をAPIErrorとして返す。
func (r Rules) Validate(in AddListingInput) (*model.Listing, *model.APIError) {
	if !r.Catalog.HasBrand(in.Brand) {
		return nil, model.NewInvalidBrandError(in.Brand)
	}
	if !r.Catalog.HasModel(in.Brand, in.Model) {
		return nil, model.NewInvalidModelError(in.Brand, in.Model)
	}
	if !in.Year.Present || !in.Year.Valid || in.Year.Value < r.YearMin || in.Year.Value > r.YearMax {
		return nil, model.NewInvalidYearError(r.YearMin, r.YearMax)
	}

	l := &model.Listing{Brand: in.Brand, Model: in.Model, Year: in.Year.Value}
	if !r.PriceMileage {
		return l, nil
	}

	if !in.Price.nonNegative() {
		return nil, model.NewInvalidPriceError()
	}
	if !in.Mileage.nonNegative() {
		return nil, model.NewInvalidMileageError()
	}
	price, mileage := in.Price.Value, in.Mileage.Value
	l.Price = &price
	l.Mileage = &mileage

	return l, nil
}
