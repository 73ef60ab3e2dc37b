package models

// Member is a row in the Members worksheet. Members are created by
// registration and edited in place; the app never deletes them.
type Member struct {
	MemberID             int    `json:"member_id"`
	NickName             string `json:"nick_name"`
	FullName             string `json:"full_name"`
	Gender               string `json:"gender"`
	BirthDate            string `json:"birth_date"`
	PhoneNumber          string `json:"phone_number"`
	MedicalInfo          string `json:"medical_info"`
	FitnessGoal          string `json:"fitness_goal"`
	PreferredWorkoutTime string `json:"preferred_workout_time"`
	PhotoURL             string `json:"photo_url"`
}

// GenderOptions and WorkoutTimes are the fixed choices offered by the
// registration and edit forms.
var GenderOptions = []string{"Male", "Female", "Other"}

var WorkoutTimes = []string{
	"8am-10am", "11am-12pm", "1pm-3pm", "4pm-6pm",
	"6pm-7pm", "7pm-8pm", "8pm-9pm", "9pm-10pm",
}
