package fortune

import (
	"math/rand"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/utils"

	"gorm.io/datatypes"
)

// Canned copy for template fortunes. Selection is seeded by birthday and
// date so the same user sees the same reading all day.
var (
	astroTexts = []string{
		"今日星象平稳，水星顺行带来清晰的思路，适合处理积压的事务。",
		"月亮进入你的事业宫，直觉敏锐，抓住午后出现的机会。",
		"金星与木星呈吉相，人际关系顺畅，贵人运明显提升。",
		"太阳能量充沛，行动力强，今天适合推进重要计划。",
		"星盘显示今日宜静不宜动，沉淀思考会带来意外收获。",
	}
	careerTexts = []string{
		"工作中会有新的想法涌现，记录下来并与同事分享，会获得认可。",
		"今日的会议或沟通中保持耐心，倾听比表达更能赢得信任。",
		"适合处理细节性工作，严谨的态度会被上级注意到。",
		"团队协作运佳，主动补位能化解一个潜在的小危机。",
	}
	wealthTexts = []string{
		"正财运平稳，避免冲动消费，晚间适合盘点本月开支。",
		"偏财运小旺，但不宜追高，落袋为安是今日关键词。",
		"财务上有小惊喜，可能是久违的回款或折扣。",
		"适合做长期规划，今天做的预算会比平时更理性。",
	}
	loveTexts = []string{
		"单身者桃花运温和，旧友的问候可能藏着新的可能。",
		"有伴者适合安排一顿安静的晚餐，倾诉会拉近彼此距离。",
		"感情中避免翻旧账，今天的包容会换来加倍的温柔。",
		"爱情运势上扬，真诚表达好感会得到积极回应。",
	}
	summaryTexts = []string{
		"整体运势稳中有升，保持平常心，好事自然来。",
		"今天是积蓄能量的一天，稳扎稳打胜过冒进。",
		"运势不错，把握节奏，该出手时就出手。",
		"平顺的一天，适合完成待办清单上的小目标。",
	}
	suggestionTexts = []string{
		"早起十分钟，给自己留出规划今天的时间。",
		"主动联系一位久未联系的朋友。",
		"午后散步十五分钟，让思路更清晰。",
		"睡前整理明日待办，减少焦虑。",
	}
	avoidanceTexts = []string{
		"避免在情绪激动时做重要决定。",
		"避免熬夜，今晚早些休息。",
		"避免与人争执口舌之快。",
		"避免冲动网购，购物车先放一晚。",
	}
	suitableTexts   = []string{"整理桌面", "运动出汗", "读书充电", "联络旧友", "早睡早起"}
	unsuitableTexts = []string{"拖延症发作", "冲动消费", "熬夜刷剧", "口舌之争", "暴饮暴食"}
	luckyColors     = []string{"蓝色", "红色", "金色", "绿色", "紫色", "白色", "橙色"}
)

func pick(r *rand.Rand, options []string) string {
	return options[r.Intn(len(options))]
}

func birthdayTime(birthday *datatypes.Date) *time.Time {
	if birthday == nil {
		return nil
	}
	t := time.Time(*birthday)
	return &t
}

// templateFortune builds a fully-populated deterministic reading. The
// score range differs by source: fallback readings span the full band,
// preview readings stay in a friendlier one.
func templateFortune(
	user *models.User,
	date datatypes.Date,
	source models.FortuneSource,
) *models.DailyFortune {
	day := time.Time(date)
	r := utils.NewSeededRand(utils.FortuneSeed(birthdayTime(user.Birthday), day))

	minScore, maxScore := 50, 100
	if source == models.FortuneSourcePreview {
		minScore, maxScore = 60, 96
	}

	return &models.DailyFortune{
		UserID:       user.ID,
		Date:         date,
		Source:       source,
		OverallScore: utils.IntBetween(r, minScore, maxScore),
		CareerStars:  utils.HalfStars(r, 2.5, 5),
		WealthStars:  utils.HalfStars(r, 2.5, 5),
		LoveStars:    utils.HalfStars(r, 2.5, 5),

		AstroAnalysis:  pick(r, astroTexts),
		CareerAnalysis: pick(r, careerTexts),
		WealthAnalysis: pick(r, wealthTexts),
		LoveAnalysis:   pick(r, loveTexts),
		Summary:        pick(r, summaryTexts),
		Suggestion:     pick(r, suggestionTexts),
		Avoidance:      pick(r, avoidanceTexts),

		Suitable:    pick(r, suitableTexts),
		Unsuitable:  pick(r, unsuitableTexts),
		LuckyColor:  pick(r, luckyColors),
		LuckyNumber: utils.IntBetween(r, 1, 10),
	}
}
