package entity

// Outcome は検証結果の3値判定です。結果ページのパネル選択に使用されます。
type Outcome string

const (
	// OutcomeSuccess はレコードが存在し、かつ有効期限内であることを示します。
	OutcomeSuccess Outcome = "success"
	// OutcomeExpired は有効期限切れ（または期限が解釈不能）であることを示します。
	OutcomeExpired Outcome = "expired"
	// OutcomeDenied は上記以外のすべて（レコード不一致を含む）を示します。
	OutcomeDenied Outcome = "denied"
)

// VerificationResult は確認済みフィールドの検証結果を表します。
type VerificationResult struct {
	Outcome    Outcome // 3値判定
	IsValid    bool    // 有効期限内かどうか
	ExistsInDB bool    // レジストリにレコードが存在するか
}
