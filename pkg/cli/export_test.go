package cli

var (
	ChatLoop     = chatLoop
	PrintEntries = printEntries
	ReplyMeta    = replyMeta
)
