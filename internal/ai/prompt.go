package ai

const promptTemplate = `You are an expert Postfix mail server administrator and security analyst. Analyze these Postfix mail logs and provide a detailed JSON response.

Logs to analyze:
%s

Provide a comprehensive JSON analysis with this exact structure:
{
  "summary": "A detailed 3-5 paragraph executive summary covering overall mail server health, mail flow patterns, delivery rates, concerning trends, and recommendations",
  "anomalies": ["List specific unusual patterns with examples from logs"],
  "threats": ["List potential security threats with specific evidence from logs"],
  "errors": ["List configuration and operational errors with specific SMTP codes and details"],
  "statistics": {
    "totalMessages": "count",
    "successRate": "percentage",
    "bounceRate": "percentage",
    "deferredRate": "percentage",
    "topSenderDomains": ["domain list"],
    "topRecipientDomains": ["domain list"],
    "peakActivityTime": "time period"
  },
  "recommendations": ["List actionable improvements"]
}

Be specific, cite log entries, identify patterns, and prioritize by severity. Return ONLY valid JSON.`
