package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCompletion = `星盘分析：今日水星顺行，思路清晰，适合推进搁置的计划。
事业运分析：上午适合处理文书工作，下午的沟通会带来转机。
事业运星数：4.5
财富运分析：正财平稳，避免高风险投资。
财富运星数：3
爱情运分析：有伴者适合安排一次晚餐约会。
爱情运星数：4
建议事项：早睡早起，保持运动。
避免事项：避免与同事争执。
今日宜：整理桌面
今日忌：冲动消费
今日幸运色：蓝色
今日幸运数字：7
今日运势综合数字：87
今日简要总结：稳中有升的一天。`

func TestParseLabeledCompletion(t *testing.T) {
	parser := NewFortuneParser()

	parsed, err := parser.Parse(sampleCompletion)
	require.NoError(t, err)

	require.NotNil(t, parsed.OverallScore)
	assert.Equal(t, 87, *parsed.OverallScore)

	require.NotNil(t, parsed.CareerStars)
	assert.Equal(t, 4.5, *parsed.CareerStars)
	require.NotNil(t, parsed.WealthStars)
	assert.Equal(t, 3.0, *parsed.WealthStars)
	require.NotNil(t, parsed.LoveStars)
	assert.Equal(t, 4.0, *parsed.LoveStars)

	require.NotNil(t, parsed.LuckyNumber)
	assert.Equal(t, 7, *parsed.LuckyNumber)

	assert.Equal(t, "今日水星顺行，思路清晰，适合推进搁置的计划。", parsed.AstroAnalysis)
	assert.Equal(t, "上午适合处理文书工作，下午的沟通会带来转机。", parsed.CareerAnalysis)
	assert.Equal(t, "正财平稳，避免高风险投资。", parsed.WealthAnalysis)
	assert.Equal(t, "有伴者适合安排一次晚餐约会。", parsed.LoveAnalysis)
	assert.Equal(t, "早睡早起，保持运动。", parsed.Suggestion)
	assert.Equal(t, "避免与同事争执。", parsed.Avoidance)
	assert.Equal(t, "整理桌面", parsed.Suitable)
	assert.Equal(t, "冲动消费", parsed.Unsuitable)
	assert.Equal(t, "蓝色", parsed.LuckyColor)
	assert.Equal(t, "稳中有升的一天。", parsed.Summary)
}

func TestParseToleratesMarkdownAndASCIIColons(t *testing.T) {
	parser := NewFortuneParser()

	content := `## 星盘分析: 金星与木星呈吉相，人际关系顺畅。
**事业运星数**: 3.5
- 今日运势综合数字: 72
今日简要总结: 平顺的一天。`

	parsed, err := parser.Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "金星与木星呈吉相，人际关系顺畅。", parsed.AstroAnalysis)
	require.NotNil(t, parsed.CareerStars)
	assert.Equal(t, 3.5, *parsed.CareerStars)
	require.NotNil(t, parsed.OverallScore)
	assert.Equal(t, 72, *parsed.OverallScore)
}

func TestParseBlockFieldSpansLines(t *testing.T) {
	parser := NewFortuneParser()

	content := `星盘分析：第一句解读。
第二句解读接在下一行。
事业运分析：单独一句。
今日运势综合数字：65`

	parsed, err := parser.Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "第一句解读。\n第二句解读接在下一行。", parsed.AstroAnalysis)
	assert.Equal(t, "单独一句。", parsed.CareerAnalysis)
}

func TestParseMissingLabelLeavesFieldUnset(t *testing.T) {
	parser := NewFortuneParser()

	content := `星盘分析：只有星盘和总分。
今日运势综合数字：70`

	parsed, err := parser.Parse(content)
	require.NoError(t, err)

	assert.Nil(t, parsed.CareerStars)
	assert.Nil(t, parsed.LuckyNumber)
	assert.Empty(t, parsed.CareerAnalysis)
	assert.Empty(t, parsed.LuckyColor)
}

func TestParseJSONFallback(t *testing.T) {
	parser := NewFortuneParser()

	content := `{"overallScore": 80, "astroAnalysis": "水星顺行。", "careerStars": 4}`

	parsed, err := parser.Parse(content)
	require.NoError(t, err)

	require.NotNil(t, parsed.OverallScore)
	assert.Equal(t, 80, *parsed.OverallScore)
	assert.Equal(t, "水星顺行。", parsed.AstroAnalysis)
}

func TestParseRejectsUnusableCompletions(t *testing.T) {
	parser := NewFortuneParser()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"prose without labels", "今天的运势很好，祝你开心。"},
		{"score out of range", "星盘分析：解读。\n今日运势综合数字：150"},
		{"stars out of range", "星盘分析：解读。\n事业运星数：7\n今日运势综合数字：80"},
		{"score without narrative", "今日运势综合数字：80\n今日幸运色：红色"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parser.Parse(tt.content)
			assert.Error(t, err)
			assert.Nil(t, parsed)
		})
	}
}
