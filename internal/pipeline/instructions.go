package pipeline

import "fmt"

// feedbackFormat describes the JSON shape ParseFeedback accepts.
const feedbackFormat = `{
  "overallScore": number, // 0-100
  "ATS": {
    "score": number, // how well the resume would pass an applicant tracking system
    "tips": [{"type": "good" | "improve", "tip": string}] // 3-4 tips
  },
  "toneAndStyle": {
    "score": number,
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}] // 3-4 tips
  },
  "content": {
    "score": number,
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}]
  },
  "structure": {
    "score": number,
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}]
  },
  "skills": {
    "score": number,
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}]
  }
}`

// PrepareInstructions builds the analysis prompt for a resume targeted at the
// given job.
func PrepareInstructions(jobTitle, jobDescription string) string {
	return fmt.Sprintf(`You are an expert in ATS (Applicant Tracking System) and resume analysis.
Please analyze and rate this resume and suggest how to improve it.
The rating can be low if the resume is bad.
Be thorough and detailed. Don't be afraid to point out any mistakes or areas for improvement.
If there is a lot to improve, don't hesitate to give low scores. This is to help the user improve their resume.
If available, use the job description for the job the user is applying to give more detailed feedback.
If provided, take the job description into consideration.
The job title is: %s
The job description is: %s
Provide the feedback using the following format:
%s
Return the analysis as a JSON object, without any other text and without the backticks.
Do not include any other text or comments.`, jobTitle, jobDescription, feedbackFormat)
}
