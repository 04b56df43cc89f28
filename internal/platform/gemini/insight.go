package gemini

import "context"

// DailyInsight asks the text model for a short insight about dreams.
func (c *Client) DailyInsight(ctx context.Context, dreams []InsightDream) (string, error) {
	prompt, err := DailyInsightPrompt(dreams)
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, prompt)
}
