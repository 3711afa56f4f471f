package bot

// Canned replies for the conversational flow. Wording is kept stable since
// users see these verbatim in the chat.
const (
	msgWelcome = "嗨，我是你的記帳小幫手！\n\n你可以先試著輸入：\n- 記帳\n- 本月統計\n- 設定預算"

	msgQuickEntryGuide = "我們來記一筆支出～\n\n之後會做完整的引導式流程，現在先示範：\n\n請直接試試輸入：午餐 120 或 120 午餐 麥當勞。"

	msgNoAmount = "我看不太出金額，是不是忘了輸入數字？\n\n可以試試：午餐 120、120 午餐 麥當勞。"

	msgInvalidAmount = "金額看起來怪怪的，請輸入大於 0 的數字，例如：120。"

	msgBudgetUsage = "請在「設定預算」後面加上金額，例如：\n- 設定預算 20000"

	msgInvalidBudget = "預算金額要是大於 0 的數字，例如：設定預算 20000"

	msgStatsFailed = "查詢本月統計時發生錯誤，請稍後再試一次。"

	msgBudgetFailed = "設定預算時發生錯誤，請稍後再試一次。"

	msgQuickEntryFailed = "剛剛記帳時遇到一點問題，請稍後再試一次，或先用「記帳」指令一步一步輸入。"
)
