package notify

import (
	"fmt"
	"strings"
)

// Welcome is sent to the owner after linking their Telegram account.
func Welcome(chatID, userID string) Message {
	text := strings.Join([]string{
		fmt.Sprintf("✅ Verification complete for %s.", userID),
		"",
		"Menu is enabled. Tap /start to open the bot menu.",
		"From the menu you can: Browse Files, Search, Recent, and Settings.",
		"If you don't see the menu, send /start again.",
	}, "\n")
	return Message{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &Keyboard{InlineKeyboard: [][]Button{
			{{Text: "Start", CallbackData: "start|open"}},
		}},
	}
}

func MemberAdded(memberTgID, owner string) Message {
	return Message{ChatID: memberTgID, Text: fmt.Sprintf("You have been added as a family member by %s.", owner)}
}

func MemberAddedOwner(ownerTgID, memberTgID string) Message {
	return Message{ChatID: ownerTgID, Text: fmt.Sprintf("Member %s added.", memberTgID)}
}

func MemberRemoved(memberTgID, owner string) Message {
	return Message{ChatID: memberTgID, Text: fmt.Sprintf("Your access has been removed by %s.", owner)}
}

func MemberRemovedOwner(ownerTgID, memberTgID string) Message {
	return Message{ChatID: ownerTgID, Text: fmt.Sprintf("Member %s removed.", memberTgID)}
}

// BotLogout messages are sent when the owner disables access from the bot.
func BotLogoutOwner(ownerTgID string) Message {
	return Message{ChatID: ownerTgID, Text: "You have logged out via bot. Bot access is now disabled until you sign in again."}
}

func BotLogoutMember(memberTgID string) Message {
	return Message{ChatID: memberTgID, Text: "Owner logged out via bot. Your access to Drive via bot is temporarily disabled."}
}

// SignOut messages are sent when the owner signs out of the website.
func SignOutOwner(ownerTgID string) Message {
	return Message{ChatID: ownerTgID, Text: "You have signed out from the website. Bot access is now disabled until you sign in again."}
}

func SignOutMember(memberTgID string) Message {
	return Message{ChatID: memberTgID, Text: "Owner signed out. Your access to Drive via bot is temporarily disabled."}
}
