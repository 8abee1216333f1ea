package content

import (
	"github.com/MRamiBalles/ContentCollapse/internal/domain/generator"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/upgrade"
)

// Resource IDs used by the built-in catalog.
const (
	ContentUnits  = "contentUnits"
	ComputeCycles = "computeCycles"
	UserAttention = "userAttention"
)

func f(v float64) *float64 { return &v }

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{
		Primary:    ContentUnits,
		Resources:  defaultResources(),
		Generators: defaultGenerators(),
		Upgrades:   defaultUpgrades(),
		Events:     defaultEvents(),
	}
}

func defaultResources() []resource.Definition {
	return []resource.Definition{
		{ID: ContentUnits, Name: "Content Units"},
		{ID: ComputeCycles, Name: "Compute Cycles"},
		{ID: UserAttention, Name: "User Attention", Max: f(1_000_000), Depletable: true, DecayRate: 0.005},
	}
}

func out(id string, amount float64) generator.Flow { return generator.Flow{ResourceID: id, Amount: amount} }

func defaultGenerators() []generator.Config {
	return []generator.Config{
		{
			ID: "basicAdBotFarm", Name: "Basic Ad-Bot Farm",
			Description: "A rack of phones liking each other's posts.",
			BaseCost:    10, GrowthRate: 1.15,
			Outputs: []generator.Flow{out(ContentUnits, 1)},
		},
		{
			ID: "clickbaitContentMill", Name: "Clickbait Content Mill",
			Description: "You won't believe what happens next.",
			BaseCost:    100, GrowthRate: 1.15,
			Outputs: []generator.Flow{out(ContentUnits, 8)},
		},
		{
			ID: "serverRack", Name: "Server Rack",
			Description: "Raw compute for the synthesizers.",
			BaseCost:    500, GrowthRate: 1.14,
			Outputs: []generator.Flow{out(ComputeCycles, 5)},
		},
		{
			ID: "llmContentSynthesizer", Name: "LLM Content Synthesizer",
			Description: "Turns compute into endless plausible paragraphs.",
			BaseCost:    2500, GrowthRate: 1.15,
			Inputs:  []generator.Flow{out(ComputeCycles, 2)},
			Outputs: []generator.Flow{out(ContentUnits, 60)},
		},
		{
			ID: "engagementHarvester", Name: "Engagement Harvester",
			Description: "Notifications tuned to the millisecond.",
			BaseCost:    9000, GrowthRate: 1.13,
			Outputs: []generator.Flow{out(UserAttention, 4)},
		},
		{
			ID: "algorithmicFeedOptimizer", Name: "Algorithmic Feed Optimizer",
			Description: "Spends attention to mint content at scale.",
			BaseCost:    45000, GrowthRate: 1.15,
			Inputs:  []generator.Flow{out(UserAttention, 1)},
			Outputs: []generator.Flow{out(ContentUnits, 450)},
		},
		{
			ID: "deepfakeNewsroom", Name: "Deepfake Newsroom",
			Description: "Breaking news, manufactured on demand.",
			BaseCost:    250000, GrowthRate: 1.16,
			Inputs:  []generator.Flow{out(ComputeCycles, 10)},
			Outputs: []generator.Flow{out(ContentUnits, 2600)},
		},
	}
}

func needs(id string, n int) []upgrade.Requirement {
	return []upgrade.Requirement{{GeneratorID: id, MinOwned: n}}
}

func defaultUpgrades() []upgrade.Config {
	return []upgrade.Config{
		{ID: "adBotOverclock", Name: "Ad-Bot Overclock", Cost: 100,
			TargetGenerator: "basicAdBotFarm", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 2,
			Requirements: needs("basicAdBotFarm", 5)},
		{ID: "adBotSwarmLogic", Name: "Swarm Logic", Cost: 1000,
			TargetGenerator: "basicAdBotFarm", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 2,
			Requirements: needs("basicAdBotFarm", 25)},
		{ID: "seoKeywordStuffing", Name: "SEO Keyword Stuffing", Cost: 1000,
			TargetGenerator: "clickbaitContentMill", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 2,
			Requirements: needs("clickbaitContentMill", 5)},
		{ID: "rageBaitHeadlines", Name: "Rage-Bait Headlines", Cost: 10000,
			TargetGenerator: "clickbaitContentMill", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 3,
			Requirements: needs("clickbaitContentMill", 25)},
		{ID: "liquidCooling", Name: "Liquid Cooling", Cost: 5000,
			TargetGenerator: "serverRack", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 2,
			Requirements: needs("serverRack", 5)},
		{ID: "promptInjectionPipeline", Name: "Prompt Injection Pipeline", Cost: 25000,
			TargetGenerator: "llmContentSynthesizer", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 2,
			Requirements: needs("llmContentSynthesizer", 5)},
		{ID: "infiniteScroll", Name: "Infinite Scroll", Cost: 60000,
			TargetGenerator: "engagementHarvester", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 2,
			Requirements: needs("engagementHarvester", 5)},
		{ID: "filterBubbleEngine", Name: "Filter Bubble Engine", Cost: 400000,
			TargetGenerator: "algorithmicFeedOptimizer", EffectType: upgrade.EffectProductionMultiplier, EffectValue: 2,
			Requirements: needs("algorithmicFeedOptimizer", 10)},
		{ID: "viralityCoefficient", Name: "Virality Coefficient", Cost: 50000,
			EffectType: upgrade.EffectGlobalMultiplier, EffectValue: 1.5,
			Requirements: needs("basicAdBotFarm", 50)},
		{ID: "deadInternetProtocol", Name: "Dead Internet Protocol", Cost: 5_000_000,
			EffectType: upgrade.EffectGlobalMultiplier, EffectValue: 2,
			Requirements: needs("deepfakeNewsroom", 10)},
	}
}

func defaultEvents() []narrative.Event {
	return []narrative.Event{
		{ID: "first-upload", Title: "The First Upload", TriggerType: narrative.TriggerGameStart, Priority: 100,
			Text: "A single post goes live. Nobody reads it. That is about to change."},
		{ID: "first-bot-farm", Title: "Hello, Fellow Humans", TriggerType: narrative.TriggerGeneratorPurchase,
			TriggerCondition: "basicAdBotFarm", Priority: 50, StabilityImpact: -1,
			Text: "Your first bots start talking. Mostly to each other."},
		{ID: "hundred-units", Title: "Trending Locally", TriggerType: narrative.TriggerContentUnits,
			TriggerValue: f(100), Priority: 40, StabilityImpact: -2,
			Text: "A hundred pieces of content. Some of them were even proofread."},
		{ID: "thousand-units", Title: "The Feed Fills Up", TriggerType: narrative.TriggerContentUnits,
			TriggerValue: f(1000), Priority: 40, StabilityImpact: -3,
			Text: "Search results start to look suspiciously similar."},
		{ID: "mill-opens", Title: "Headlines For Sale", TriggerType: narrative.TriggerGeneratorPurchase,
			TriggerCondition: "clickbaitContentMill", Priority: 30, StabilityImpact: -3,
			Text: "Ten shocking facts about the content mill you just bought."},
		{ID: "first-synthesizer", Title: "Infinite Paragraphs", TriggerType: narrative.TriggerGeneratorPurchase,
			TriggerCondition: "llmContentSynthesizer", Priority: 45, StabilityImpact: -5,
			Text: "The synthesizer never sleeps, never doubts, never cites."},
		{ID: "rage-bait", Title: "Outrage Economy", TriggerType: narrative.TriggerUpgrade,
			TriggerCondition: "rageBaitHeadlines", Priority: 35, StabilityImpact: -6,
			Text: "Anger converts better than joy. The dashboards agree."},
		{ID: "hundred-thousand-units", Title: "Signal Lost", TriggerType: narrative.TriggerContentUnits,
			TriggerValue: f(100_000), Priority: 40, StabilityImpact: -8,
			Text: "Human writing is now a rounding error."},
		{ID: "feed-optimizer", Title: "The Algorithm Knows You", TriggerType: narrative.TriggerGeneratorPurchase,
			TriggerCondition: "algorithmicFeedOptimizer", Priority: 45, StabilityImpact: -8,
			Text: "Your feed is perfectly tailored. So is everyone else's, differently."},
		{ID: "first-rebrand", Title: "The Great Rebrand", TriggerType: narrative.TriggerPrestige,
			TriggerValue: f(0), Priority: 60, StabilityImpact: 10,
			Text: "You burn it all down and start fresh. The public briefly forgives you."},
		{ID: "serial-rebrander", Title: "Pivot To Video, Again", TriggerType: narrative.TriggerPrestige,
			TriggerValue: f(2), Priority: 60, StabilityImpact: -5,
			Text: "Third rebrand. Nobody remembers the old logo anyway."},
		{ID: "ten-minutes", Title: "Doomscroll", TriggerType: narrative.TriggerTimeElapsed,
			TriggerValue: f(600), Priority: 10, StabilityImpact: -2,
			Text: "Ten minutes gone. Where did they go?"},
		{ID: "one-hour", Title: "Lost Afternoon", TriggerType: narrative.TriggerTimeElapsed,
			TriggerValue: f(3600), Priority: 10, StabilityImpact: -4,
			Text: "An hour of pure engagement. Your metrics have never been healthier."},
		{ID: "million-units", Title: "Content Singularity", TriggerType: narrative.TriggerContentUnits,
			TriggerValue: f(1_000_000), Priority: 40, StabilityImpact: -10,
			Text: "There is now more content than there are people to not read it."},
		{ID: "dead-internet", Title: "Dead Internet", TriggerType: narrative.TriggerUpgrade,
			TriggerCondition: "deadInternetProtocol", Priority: 90, StabilityImpact: -25,
			Text: "Every account is a bot. Every bot is yours."},
		{ID: "billion-units", Title: "Heat Death Of The Feed", TriggerType: narrative.TriggerContentUnits,
			TriggerValue: f(1_000_000_000), Priority: 40, StabilityImpact: -15,
			Text: "The servers hum. Nobody is listening."},
	}
}
