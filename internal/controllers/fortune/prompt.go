package fortune

import (
	"fmt"
	"strings"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
)

// buildPrompt produces the generation instruction. The output contract
// must match what the parser's label schema expects, so the two are
// maintained together.
func buildPrompt(user *models.User, day time.Time) string {
	var sb strings.Builder

	sb.WriteString("你是一位专业的占星运势分析师。请为用户生成")
	sb.WriteString(day.Format("2006年01月02日"))
	sb.WriteString("的每日运势。\n\n")

	if user.Birthday != nil {
		sb.WriteString(fmt.Sprintf(
			"用户生日：%s，请结合星座特质分析。\n\n",
			time.Time(*user.Birthday).Format("2006-01-02"),
		))
	}
	if user.Name != nil && *user.Name != "" {
		sb.WriteString(fmt.Sprintf("用户称呼：%s。\n\n", *user.Name))
	}

	sb.WriteString(`请严格按照以下格式输出，每个标签独占一行，标签后使用中文冒号：

星盘分析：（2-3句话的星象解读）
事业运分析：（2-3句话）
事业运星数：（0到5之间的数字，允许半星，如4.5）
财富运分析：（2-3句话）
财富运星数：（0到5之间的数字，允许半星）
爱情运分析：（2-3句话）
爱情运星数：（0到5之间的数字，允许半星）
建议事项：（今日建议，1-2句话）
避免事项：（今日需避免的事，1-2句话）
今日宜：（不超过10个字）
今日忌：（不超过10个字）
今日幸运色：（一种颜色）
今日幸运数字：（1到9的整数）
今日运势综合数字：（0到100的整数）
今日简要总结：（一句话总结）

不要输出任何其他内容。`)

	return sb.String()
}
