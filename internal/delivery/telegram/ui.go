package telegram

import "gopkg.in/telebot.v3"

// Reply-keyboard labels. The conversation router matches on these exact
// strings, so they live in one place.
const (
	btnTextStartTrading = "🚀 Start Trading"
	btnTextStats        = "📈 Stats"
	btnTextExpiry5Min   = "⏱ 5 Minutes"
	btnTextWin          = "✅ Win"
	btnTextLoss         = "❌ Loss"
	btnTextBack         = "🔙 Back"
)

var btnActivateInfo = telebot.Btn{Text: "🔑 How to activate", Unique: "btn_activate_info"}

func mainMenu() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnTextStartTrading)),
		menu.Row(menu.Text(btnTextStats)),
	)
	return menu
}

func expiryMenu() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnTextExpiry5Min)),
		menu.Row(menu.Text(btnTextBack)),
	)
	return menu
}

func marketMenu(labels []string) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}

	rows := make([]telebot.Row, 0, len(labels)/2+2)
	for i := 0; i < len(labels); i += 2 {
		if i+1 < len(labels) {
			rows = append(rows, menu.Row(menu.Text(labels[i]), menu.Text(labels[i+1])))
		} else {
			rows = append(rows, menu.Row(menu.Text(labels[i])))
		}
	}
	rows = append(rows, menu.Row(menu.Text(btnTextBack)))

	menu.Reply(rows...)
	return menu
}

func resultMenu() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnTextWin), menu.Text(btnTextLoss)),
		menu.Row(menu.Text(btnTextBack)),
	)
	return menu
}

func activateInfoMenu() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(menu.Row(btnActivateInfo))
	return menu
}
