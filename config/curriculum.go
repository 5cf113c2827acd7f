package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/saja-boys/jinwoo-server/mission"
)

// LoadCurriculum loads the mission curriculum from a YAML file, expanding
// ${VAR} references before parsing. An empty path yields the embedded default
// curriculum. The result is validated against the curriculum schema; an
// invalid curriculum is a startup failure, not something to limp past.
func LoadCurriculum(path string) (*mission.Curriculum, error) {
	data := []byte(defaultCurriculumYAML)
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read curriculum file: %w", err)
		}
		data = fileData
	}

	configStr := expandEnvVars(string(data))

	var curriculum mission.Curriculum
	if err := yaml.Unmarshal([]byte(configStr), &curriculum); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum: %w", err)
	}

	validator, err := NewCurriculumValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(&curriculum); err != nil {
		return nil, err
	}

	return &curriculum, nil
}

// defaultCurriculumYAML is the six-stage fan-meeting curriculum shipped with
// the server. Deployments override it with CURRICULUM_PATH.
const defaultCurriculumYAML = `
persona:
  name: "진우"
  group: "사자 보이즈"

stages:
  - prompt: "진우에게 인사해보세요"
    keywords: ["안녕", "하이", "헬로", "반가", "처음"]
    fallbacks:
      - "네, 안녕하세요! 만나서 반가워요!"
      - "안녕하세요! 오늘 팬미팅에 와주셔서 정말 고마워요!"
      - "반가워요! 저는 진우예요. 이름이 어떻게 되세요?"
      - "와! 정말 반가워요! 어디서 오셨어요?"
      - "안녕하세요! 오늘 날씨가 정말 좋네요!"

  - prompt: "자기소개를 해보세요"
    keywords: ["이름", "저는", "제가", "출신", "살아", "학교", "직업"]
    fallbacks:
      - "와, 정말 멋진 이름이네요! 어디서 오셨어요?"
      - "자기소개 잘 들었어요! 저도 더 알고 싶어요."
      - "흥미로운 이야기네요! 취미가 뭐예요?"
      - "정말 멋지네요! 평소에 뭘 하시는 걸 좋아해요?"
      - "저도 그런 곳 가본 적 있어요! 정말 좋은 곳이죠!"

  - prompt: "진우에게 질문해보세요"
    keywords: ["어떻게", "왜", "언제", "뭐", "무엇", "좋아하는", "취미"]
    fallbacks:
      - "좋은 질문이네요! 저는 음악하는 게 정말 좋아요."
      - "그런 것도 궁금하시는군요! 대답해드릴게요."
      - "저에 대해 관심 가져주셔서 감사해요!"
      - "저는 평소에 노래 연습을 많이 해요!"
      - "팬분들과 이렇게 대화하는 게 제일 즐거워요!"

  - prompt: "관심사에 대해 이야기해보세요"
    keywords: ["좋아해", "관심", "취미", "음악", "영화", "운동", "여행"]
    fallbacks:
      - "와, 저도 그런 거 정말 좋아해요! 언제부터 시작하셨어요?"
      - "정말 재밌겠네요! 저도 한번 해보고 싶어요."
      - "공통 관심사가 있어서 좋네요! 더 얘기해봐요."
      - "그거 정말 멋진 취미네요! 어떤 부분이 제일 재밌어요?"
      - "저도 비슷한 경험이 있어요! 정말 신기하네요!"

  - prompt: "진우와 작별 인사를 해보세요"
    keywords: ["안녕", "잘가", "또 만나", "고마워", "감사", "바이"]
    fallbacks:
      - "오늘 정말 즐거웠어요! 또 만나요!"
      - "좋은 시간이었어요. 건강하세요!"
      - "팬이 되어주셔서 감사해요. 다음에 또 만나요!"
      - "오늘 대화가 정말 재밌었어요! 다음 기회에도 꼭 만나요!"
      - "앞으로도 응원 많이 해주세요! 사랑해요!"

  - prompt: "오늘 하루 어땠는지 물어보세요"
    keywords: ["오늘", "하루", "어땠", "어떠셨", "보냈"]
    fallbacks:
      - "오늘 하루 정말 최고였어요! 당신 덕분이에요."
      - "저는 오늘 팬분들 만날 생각에 정말 설렜어요!"
      - "오늘 정말 바빴지만, 팬분들 덕분에 힘이 나요!"
      - "오늘 컨디션 최상이에요! 뭐든 물어보세요!"
      - "사실 조금 피곤했는데, 당신을 보니 에너지가 생겨요!"
`
