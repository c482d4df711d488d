package model

import "time"

// Listing はユーザーが出品した車両1台分の掲載情報を表す。
// 作成後に更新されることはなく、所有者本人による削除のみが許される。
type Listing struct {
	ID        string
	OwnerID   string
	Brand     string
	Model     string
	Year      int
	Price     *int // 価格・走行距離を扱わない設定ではnil
	Mileage   *int
	CreatedAt time.Time
}
