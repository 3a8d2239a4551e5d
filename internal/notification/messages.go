package notification

import (
	"fmt"
	"html"
	"strings"
)

// EventSummary は通知メールに載せるイベント情報
type EventSummary struct {
	Name       string
	PublicID   string
	OwnerEmail string
}

// NewVoteEmail は幹事宛の新着投票通知メールを作成する
func NewVoteEmail(baseURL string, event EventSummary, voterName, comment string) Email {
	ctaURL := fmt.Sprintf("%s/e/%s", baseURL, event.PublicID)

	lines := []string{
		fmt.Sprintf("イベント「%s」に新しい投票がありました。", event.Name),
		"",
		fmt.Sprintf("投票者：%s", voterName),
	}
	if comment != "" {
		lines = append(lines, fmt.Sprintf("コメント: %s", comment))
	}
	lines = append(lines,
		"",
		"現在の投票状況は、以下のイベントページから確認できます。",
		ctaURL,
	)

	var body strings.Builder
	fmt.Fprintf(&body, `<div style="font-size:14px;color:#5e4c3d;line-height:1.6;">`)
	fmt.Fprintf(&body, `<div>イベント「<strong>%s</strong>」に新しい投票がありました。</div>`, html.EscapeString(event.Name))
	fmt.Fprintf(&body, `<div style="margin-top:12px;">投票者: <strong>%s</strong></div>`, html.EscapeString(voterName))
	if comment != "" {
		fmt.Fprintf(&body, `<div style="margin-top:12px;padding:12px 14px;background:#f3f6ef;border-radius:12px;border:1px solid #d9e7d7;">コメント: %s</div>`, html.EscapeString(comment))
	}
	fmt.Fprintf(&body, `<div style="margin-top:12px;">現在の投票状況は、以下のイベントページから確認できます。</div>`)
	fmt.Fprintf(&body, `</div>`)

	return Email{
		To:      event.OwnerEmail,
		Subject: fmt.Sprintf("【幹事くん】新しい投票がありました｜%s", event.Name),
		Text:    strings.Join(lines, "\n"),
		HTML:    buildLayout("新しい投票がありました", body.String(), ctaURL, "イベントページを確認する"),
	}
}

// PaymentAppliedEmail は幹事宛の支払申請通知メールを作成する
func PaymentAppliedEmail(baseURL string, event EventSummary, attendanceName string, amount int, method string) Email {
	ctaURL := fmt.Sprintf("%s/e/%s/admin", baseURL, event.PublicID)
	if method == "" {
		method = "未選択"
	}

	lines := []string{
		fmt.Sprintf("イベント「%s」にて、支払申請が届いています。", event.Name),
		"",
		fmt.Sprintf("申請者：%s", attendanceName),
		fmt.Sprintf("金額：%d円", amount),
		fmt.Sprintf("支払方法：%s", method),
		"",
		"内容の確認・対応は、幹事ページから行ってください。",
		ctaURL,
	}

	var body strings.Builder
	fmt.Fprintf(&body, `<div style="font-size:14px;color:#5e4c3d;line-height:1.6;">`)
	fmt.Fprintf(&body, `<div>イベント「<strong>%s</strong>」にて、支払申請が届いています。</div>`, html.EscapeString(event.Name))
	fmt.Fprintf(&body, `<div style="margin-top:12px;">申請者: <strong>%s</strong></div>`, html.EscapeString(attendanceName))
	fmt.Fprintf(&body, `<div>金額: <strong>%d円</strong></div>`, amount)
	fmt.Fprintf(&body, `<div>支払方法: <strong>%s</strong></div>`, html.EscapeString(method))
	fmt.Fprintf(&body, `<div style="margin-top:12px;">内容の確認・対応は、幹事ページから行ってください。</div>`)
	fmt.Fprintf(&body, `</div>`)

	return Email{
		To:      event.OwnerEmail,
		Subject: fmt.Sprintf("【幹事くん】支払申請が届いています｜%s", event.Name),
		Text:    strings.Join(lines, "\n"),
		HTML:    buildLayout("支払申請が届いています", body.String(), ctaURL, "幹事ページを確認する"),
	}
}

// buildLayout はメール共通のHTMLレイアウトを組み立てる
func buildLayout(title, bodyHTML, ctaURL, ctaLabel string) string {
	return fmt.Sprintf(`
  <div style="margin:0;background:#f6f1ea;padding:32px 16px;color:#1f1b16;font-family:-apple-system,BlinkMacSystemFont,Segoe UI,Roboto,Helvetica,Arial,sans-serif;">
    <div style="max-width:560px;margin:0 auto;background:#ffffff;border:1px solid #eadbcf;border-radius:24px;overflow:hidden;">
      <div style="padding:24px 28px;border-bottom:1px solid #f0e3d8;text-align:center;">
        <div style="font-size:20px;font-weight:700;color:#2f7f3b;">幹事くん</div>
      </div>
      <div style="padding:24px 28px;">
        <div style="font-size:18px;font-weight:700;margin-bottom:8px;">%s</div>
        %s
        <div style="margin-top:20px;text-align:center;">
          <a href="%s" style="display:inline-block;padding:10px 18px;border-radius:999px;background:#2f7f3b;color:#ffffff;text-decoration:none;font-weight:700;font-size:14px;">%s</a>
        </div>
      </div>
    </div>
    <div style="max-width:560px;margin:16px auto 0;color:#7a6453;font-size:12px;text-align:center;">
      幹事くん | %s
    </div>
  </div>
  `, html.EscapeString(title), bodyHTML, ctaURL, html.EscapeString(ctaLabel), ctaURL)
}
